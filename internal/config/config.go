package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"accreditations/internal/config/connections/mongo"
	"accreditations/internal/config/connections/postgres"
	"accreditations/internal/config/connections/s3"
	"accreditations/internal/config/connections/sqlite"
	"accreditations/internal/repository/migrations"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Options override values otherwise read from the environment. Empty fields
// fall back to the environment.
type Options struct {
	Port        string
	StoreDriver string
}

type Config struct {
	Port        string
	StoreDriver string
	RecordTable string

	Postgres *postgres.Postgres
	SQLite   *sqlite.SQLite
	// Mongo and S3 are nil when disabled.
	Mongo *mongo.Mongo
	S3    *s3.S3
}

// Load reads .env (if any) and the environment without opening connections.
func Load(o Options) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        firstNonEmpty(o.Port, getenv("SERVER_PORT", "8070")),
		StoreDriver: strings.ToLower(firstNonEmpty(o.StoreDriver, getenv("STORE_DRIVER", DriverSQLite))),
		RecordTable: getenv("RECORDS_TABLE", "records"),
	}
	return cfg
}

// Init loads the configuration and opens every enabled connection.
func Init(ctx context.Context, o Options) (*Config, error) {
	cfg := Load(o)

	switch cfg.StoreDriver {
	case DriverPostgres:
		pg, err := postgres.NewConnection(ctx, postgres.ConnectionInfo{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     getenv("PG_PORT", "5432"),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", "hello-world"),
			DB:       getenv("PG_DB", "accreditations"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		})
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		cfg.Postgres = pg
	case DriverSQLite:
		lite, err := sqlite.NewConnection(ctx, getenv("SQLITE_PATH", "database.db"))
		if err != nil {
			return nil, fmt.Errorf("sqlite connect: %w", err)
		}
		cfg.SQLite = lite
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if getenv("S3_ENABLED", "false") == "true" {
		s3c, err := s3.NewConnection(s3.ConnectionInfo{
			Endpoint:  getenv("AWS_ENDPOINT", "http://localhost:9000"),
			AccessKey: getenv("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretKey: getenv("AWS_SECRET_ACCESS_KEY", "minioadmin"),
			Region:    getenv("AWS_DEFAULT_REGION", "us-east-1"),
			Bucket:    getenv("AWS_BUCKET", "accreditations"),
			UseSSL:    getenv("AWS_USE_SSL", "false") == "true",
		})
		if err != nil {
			cfg.Close(ctx)
			return nil, fmt.Errorf("s3 connect: %w", err)
		}
		if err := s3c.EnsureBucket(ctx); err != nil {
			cfg.Close(ctx)
			return nil, fmt.Errorf("s3 bucket %q: %w", s3c.Bucket, err)
		}
		cfg.S3 = s3c
	}

	if getenv("MONGO_ENABLED", "false") == "true" {
		mg, err := mongo.NewConnection(ctx, mongo.ConnectionInfo{
			URI:        os.Getenv("MONGO_URI"),
			Scheme:     getenv("MONGO_SCHEME", "mongodb"),
			User:       getenv("MONGO_USER", "root"),
			Password:   getenv("MONGO_PASSWORD", "secret"),
			Host:       getenv("MONGO_HOST", "127.0.0.1"),
			Port:       getenv("MONGO_PORT", "27017"),
			DB:         getenv("MONGO_DB", "accreditations"),
			AuthSource: getenv("MONGO_AUTH_SOURCE", "admin"),
		})
		if err != nil {
			cfg.Close(ctx)
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		cfg.Mongo = mg
	}

	return cfg, nil
}

// SQL returns the database/sql handle and migration dialect of the
// configured SQL store; db is nil for the memory driver.
func (c *Config) SQL() (db *sql.DB, dialect string) {
	switch {
	case c.Postgres != nil:
		return c.Postgres.DB(), migrations.DialectPostgres
	case c.SQLite != nil:
		return c.SQLite.DB, migrations.DialectSQLite
	}
	return nil, ""
}

func (c *Config) CheckConnections(ctx context.Context) error {
	var errs []error

	if db, _ := c.SQL(); db != nil {
		if err := db.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s ping failed: %w", c.StoreDriver, err))
		}
	} else if c.StoreDriver != DriverMemory {
		errs = append(errs, fmt.Errorf("%s not initialized", c.StoreDriver))
	}

	if c.Mongo != nil {
		if err := c.Mongo.Client.Ping(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("mongo ping failed: %w", err))
		}
	}

	if c.S3 != nil {
		if ok, err := c.S3.Client.BucketExists(ctx, c.S3.Bucket); err != nil {
			errs = append(errs, fmt.Errorf("s3 bucket check failed: %w", err))
		} else if !ok {
			errs = append(errs, fmt.Errorf("s3 bucket %q not found", c.S3.Bucket))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Close(ctx context.Context) {
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.SQLite != nil {
		_ = c.SQLite.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
