package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	_ port.TxStorage      = (*Storage)(nil)
	_ port.CatalogStorage = (*Storage)(nil)
	_ port.CartStorage    = (*Storage)(nil)
	_ port.Pinger         = (*Storage)(nil)
)

// Storage is the relational store. A Storage returned by Begin is bound to
// the open transaction.
type Storage struct {
	db *gorm.DB
}

type Opt func(*opts) error

type opts struct {
	maxOpenConns    int
	connMaxLifetime time.Duration
}

func WithMaxOpenConns(n int) Opt {
	return func(o *opts) error {
		if n < 0 {
			return errors.New("max open connections cannot be negative")
		}
		o.maxOpenConns = n
		return nil
	}
}

func WithConnMaxLifetime(d time.Duration) Opt {
	return func(o *opts) error {
		if d < 0 {
			return errors.New("connection max lifetime cannot be negative")
		}
		o.connMaxLifetime = d
		return nil
	}
}

func New(ctx context.Context, dsn string, options ...Opt) (*Storage, error) {
	const op = "Storage.New"
	log := slog.With("op", op)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid dsn: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available")

	s, err := NewWithDialector(postgres.New(postgres.Config{Conn: sqlDB}), options...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func NewWithDialector(d gorm.Dialector, options ...Opt) (*Storage, error) {
	const op = "Storage.NewWithDialector"

	var o opts
	for _, opt := range options {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	gormLog := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(d, &gorm.Config{
		TranslateError: true,
		Logger:         gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if o.maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.maxOpenConns)
	}
	if o.connMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(o.connMaxLifetime)
	}
	return &Storage{db: db}, nil
}

// AutoMigrate creates missing tables from the gorm models. Production
// schemas are managed by the migrator.
func (s *Storage) AutoMigrate(ctx context.Context) error {
	const op = "Storage.AutoMigrate"
	if err := s.db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	const op = "Storage.Ping"
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Close() {
	const op = "Storage.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	sqlDB, err := s.db.DB()
	if err != nil {
		log.Error("failed to get sql database", "err", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}

type Tx struct {
	*Storage
}

func (s *Storage) Begin(ctx context.Context) (Tx, error) {
	const op = "Storage.Begin"
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return Tx{}, fmt.Errorf("%s: failed to begin tx: %w", op, tx.Error)
	}
	return Tx{&Storage{db: tx}}, nil
}

func (tx Tx) Commit() error {
	return tx.db.Commit().Error
}

func (tx Tx) Rollback() error {
	return tx.db.Rollback().Error
}

func (s *Storage) Do(
	ctx context.Context, fn func(port.TxStorage) error,
) (doErr error) {
	const op = "Storage.Do"
	log := slog.With("op", op)

	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			if err := tx.Rollback(); err != nil {
				log.Error("failed to rollback tx", "err", err)
			}
			panic(p)
		}

		if doErr == nil {
			if err := tx.Commit(); err != nil {
				doErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	return fn(tx.Storage)
}

// translate maps gorm errors onto the domain sentinels.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w: referenced record does not exist", op, domain.ErrValidation)
	}
	return fmt.Errorf("%s: %w", op, err)
}
