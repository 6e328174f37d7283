package adapter

import (
	"fmt"

	"github.com/watchdock/agent/internal/envconf"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New returns a gorm database instance from the database config. Postgres
// wins when both backends are enabled, so that a deployment can keep the
// sqlite defaults in place and just flip POSTGRES=true.
func New(conf *envconf.DBConf) (*gorm.DB, error) {
	if conf.Postgres {
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			conf.PostgresHost,
			conf.PostgresPort,
			conf.PostgresUser,
			conf.PostgresPass,
			conf.PostgresDB,
		)

		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	if conf.SQLite {
		db, err := gorm.Open(sqlite.Open(conf.SQLitePath), &gorm.Config{})

		if err != nil {
			return nil, err
		}

		// sqlite tolerates a single writer; clamp the pool so concurrent
		// queue workers serialize on the driver instead of erroring.
		sqlDB, err := db.DB()

		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)

		return db, nil
	}

	return nil, fmt.Errorf("no database backend enabled")
}
