package container

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"deltawatch/internal/application/port"
	"deltawatch/internal/infrastructure/config"
	"deltawatch/internal/infrastructure/exchange/delta"
	"deltawatch/internal/infrastructure/storage/composite"
	pgrepo "deltawatch/internal/infrastructure/storage/postgres"
	redisrepo "deltawatch/internal/infrastructure/storage/redis"
	sqliterepo "deltawatch/internal/infrastructure/storage/sqlite"
)

// ErrStorageInitFailed 错误：存储初始化失败
var ErrStorageInitFailed = errors.New("storage initialization failed")

// Container 包含所有应用依赖
type Container struct {
	cfg         *config.Config
	delta       *delta.Manager
	redisClient *redis.Client
	sqliteRepo  *sqliterepo.Repo
	pgRepo      *pgrepo.Repo
	redisRepo   *redisrepo.Repo
	closeOnce   sync.Once
	closerChain []func() error
}

// New 创建新的容器实例
// 凭证缺失在这里失败，早于任何网络调用
func New(cfg *config.Config) (*Container, error) {
	mgr, err := delta.NewManager(delta.Options{
		BaseURL:   cfg.Exchange.Delta.BaseURL,
		APIKey:    cfg.Exchange.Delta.APIKey,
		APISecret: cfg.Exchange.Delta.APISecret,
		Timeout:   cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("delta client init failed: %w", err)
	}

	c := &Container{
		cfg:         cfg,
		delta:       mgr,
		closerChain: make([]func() error, 0),
	}

	// 初始化存储层
	if cfg.Storage.Enabled {
		if err := c.initStorage(); err != nil {
			// 清理已初始化的资源
			_ = c.Close()
			return nil, fmt.Errorf("%w: %w", ErrStorageInitFailed, err)
		}
	}

	return c, nil
}

// initStorage 初始化存储层（Redis、SQLite、Postgres）
func (c *Container) initStorage() error {
	// Redis
	if c.cfg.Storage.Redis.Enabled {
		if err := c.initRedis(); err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
	}

	// SQLite
	if c.cfg.Storage.SQLite.Enabled {
		if err := c.initSQLite(); err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
	}

	// Postgres
	if c.cfg.Storage.Postgres.Enabled {
		if err := c.initPostgres(); err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
	}

	return nil
}

// initRedis 初始化 Redis 连接
func (c *Container) initRedis() error {
	rc := c.cfg.Storage.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisClient = rdb
	c.redisRepo = redisrepo.New(
		rdb,
		rc.Prefix,
		time.Duration(rc.TTLSeconds)*time.Second,
		rc.ReportStream,
		rc.ReportChannel,
		rc.StreamMaxLen,
	)

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().
		Str("addr", rc.Addr).
		Int("db", rc.DB).
		Msg("redis initialized")

	return nil
}

// initSQLite 初始化 SQLite 数据库
func (c *Container) initSQLite() error {
	repo, err := sqliterepo.New(c.cfg.Storage.SQLite.Path)
	if err != nil {
		return err
	}

	c.sqliteRepo = repo

	// 注册关闭回调
	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing sqlite connection")
		return repo.Close()
	})

	log.Info().
		Str("path", c.cfg.Storage.SQLite.Path).
		Msg("sqlite initialized")

	return nil
}

// initPostgres 初始化 Postgres 连接
func (c *Container) initPostgres() error {
	repo, err := pgrepo.New(c.cfg.Storage.Postgres.DSN)
	if err != nil {
		return err
	}

	c.pgRepo = repo

	c.closerChain = append(c.closerChain, func() error {
		log.Info().Msg("closing postgres connection")
		return repo.Close()
	})

	log.Info().Msg("postgres initialized")
	return nil
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Market 行情客户端
func (c *Container) Market() port.MarketData {
	return c.delta.Market
}

// Account 账户客户端
func (c *Container) Account() port.AccountReader {
	return c.delta.Account
}

// ReportRepository 返回所有已启用存储的组合；未启用时为空组合
func (c *Container) ReportRepository() port.ReportRepository {
	var repos []port.ReportRepository
	if c.sqliteRepo != nil {
		repos = append(repos, c.sqliteRepo)
	}
	if c.pgRepo != nil {
		repos = append(repos, c.pgRepo)
	}
	if c.redisRepo != nil {
		repos = append(repos, c.redisRepo)
	}
	return composite.New(repos...)
}

// SQLiteRepo 获取 SQLite 仓储（可能为 nil）
func (c *Container) SQLiteRepo() *sqliterepo.Repo {
	return c.sqliteRepo
}

// RedisRepo 获取 Redis 仓储（可能为 nil）
func (c *Container) RedisRepo() *redisrepo.Repo {
	return c.redisRepo
}

// Close 按注册的逆序释放资源，只执行一次
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		var errs []error
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				errs = append(errs, e)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}
