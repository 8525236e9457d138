package config

import (
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"phone-order-api/models"
)

// InitDB opens App.DatabaseURL, migrates the schema and makes sure the
// restaurant settings record exists.
func InitDB() error {
	db, err := OpenDB(App.DatabaseURL)
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	if _, err := EnsureRestaurant(db); err != nil {
		return err
	}
	DB = db
	log.Info("Database connected and migrated successfully")
	return nil
}

// gormWriter sends gorm's messages to logrus.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	log.WithField("component", "gorm").Warnf(format, args...)
}

// NewGormLogger reports slow queries and errors through logrus. Lookups that
// find nothing are expected and stay quiet.
func NewGormLogger() logger.Interface {
	return logger.New(gormWriter{}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// OpenDB picks the Postgres driver for postgres:// URLs and SQLite for
// anything else (a file path or ":memory:").
func OpenDB(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         NewGormLogger(),
		TranslateError: true,
	}

	if isPostgres(dsn) {
		pgCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "parse postgres url")
		}
		db, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, errors.Wrap(err, "connect to postgres")
		}
		log.WithFields(log.Fields{
			"host":     pgCfg.Host,
			"port":     pgCfg.Port,
			"database": pgCfg.Database,
		}).Info("Postgres connected")
		return db, nil
	}

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dsn)
	}
	if strings.Contains(dsn, ":memory:") {
		// every new connection would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "sqlite pool")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	log.WithField("path", dsn).Info("SQLite opened")
	return db, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Migrate auto-migrates all models
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.AddOn{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	)
	return errors.Wrap(err, "migrate database")
}

// EnsureRestaurant creates the default settings record when none exists.
func EnsureRestaurant(db *gorm.DB) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := db.Order("id").First(&restaurant).Error
	if err == nil {
		return &restaurant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load restaurant")
	}
	restaurant = models.Restaurant{
		Name:         "Tote AI Restaurant",
		Address:      "123 Main Street, Downtown, CA 94123",
		Phone:        "(555) 123-4567",
		Email:        "info@toteairestaurant.com",
		OpeningHours: "Monday-Sunday: 11:00 AM - 10:00 PM",
		IsActive:     true,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		return nil, errors.Wrap(err, "create restaurant")
	}
	log.WithField("name", restaurant.Name).Info("Initialized restaurant settings")
	return &restaurant, nil
}
