package port

import "time"

type Sink interface {
	// Report block: a rendered report, stamped with the cycle time
	WriteReport(ts time.Time, block string) error
	// Normal newline (for logs)
	NewLine() error
}
