package services

import (
	"database/sql"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConnectDatabase opens the Postgres pool from DATABASE_URL and verifies
// the connection, retrying a few times for transient network blips.
func ConnectDatabase(logger *logrus.Logger) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database connection")
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			logger.Info("Successfully connected to the database")
			return db, nil
		}
		logger.WithError(err).Info("Database connection failed, retrying in 2s...")
		time.Sleep(2 * time.Second)
	}
	return nil, errors.Wrap(err, "could not connect to database after retries")
}
