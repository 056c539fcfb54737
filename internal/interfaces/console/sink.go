package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"deltawatch/internal/application/port"
)

type Sink struct {
	w io.Writer
}

func NewSink() port.Sink { return &Sink{w: os.Stdout} }

// NewWriterSink 写到任意 writer（测试用）
func NewWriterSink(w io.Writer) port.Sink { return &Sink{w: w} }

// 报告块前后各留一个空行，与日志分开
func (s *Sink) WriteReport(ts time.Time, block string) error {
	_, err := fmt.Fprintf(s.w, "\n%s\n%s\n", ts.Format("2006-01-02 15:04:05"), block)
	return err
}

func (s *Sink) NewLine() error {
	_, err := fmt.Fprint(s.w, "\n")
	return err
}
