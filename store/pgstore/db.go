package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-ems-server/internal/errors"
	"github.com/jrsteele09/go-ems-server/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is a Postgres backed store.Store built on gorm.
type DB struct {
	gorm *gorm.DB
}

var _ store.Store = (*DB)(nil)

type Option func(*gorm.Config)

// WithNowFunc sets the clock gorm uses for created_at and updated_at.
func WithNowFunc(now func() time.Time) Option {
	return func(c *gorm.Config) {
		c.NowFunc = now
	}
}

// WithLogger replaces gorm's silent logger.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) {
		c.Logger = l
	}
}

// Open connects to dsn and migrates the schema.
func Open(dsn string, options ...Option) (*DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	for _, opt := range options {
		opt(cfg)
	}

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("[pgstore Open] %w", err)
	}
	if err := db.AutoMigrate(
		&userRow{},
		&employeeRow{},
		&attendanceRow{},
		&leaveRow{},
		&taskRow{},
		&salaryRow{},
	); err != nil {
		return nil, fmt.Errorf("[pgstore Open] auto migrate: %w", err)
	}
	return &DB{gorm: db}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reset empties every table. Tests use it to start from a clean schema.
func (db *DB) Reset(ctx context.Context) error {
	return db.gorm.WithContext(ctx).Exec(
		`TRUNCATE ems_salary, ems_tasks, ems_leaves, ems_attendance, ems_employees, ems_users RESTART IDENTITY CASCADE`,
	).Error
}

func (db *DB) conflict(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrapf(errors.ErrConflict, "%s", what)
	}
	return err
}

func notFound(err error, miss error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return miss
	}
	return err
}
