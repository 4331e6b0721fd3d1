package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"travelo/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const driverName = "postgres"

var ErrUnreachable = errors.New("database unreachable")

// Connection splits reads from writes. Ledger mutations and anything that must see them go to Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	read, err := Open("read", cfg.DB.Postgres.Read, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open read database")
	}

	write, err := Open("write", cfg.DB.Postgres.Write, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open write database")
	}

	return &Connection{Read: read, Write: write}
}

// Ping reports whether both pools still reach their servers.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("ping write: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("ping read: %w", err)
	}

	return nil
}

func (c *Connection) Close() error {
	return errors.Join(c.Write.Close(), c.Read.Close())
}

// sessionParams are sent by lib/pq as run-time parameters when the session starts.
func sessionParams(cfg *config.Config) url.Values {
	params := url.Values{}

	if cfg.App.Name != "" {
		params.Set("application_name", cfg.App.Name)
	}

	if timeout := cfg.DB.Postgres.Pool.StatementTimeMS; timeout > 0 {
		params.Set("statement_timeout", strconv.Itoa(timeout))
	}

	return params
}

// Open connects to one node, retrying MaxRetry times before giving up.
func Open(name string, node config.PostgresNode, cfg *config.Config) (*sqlx.DB, error) {
	pg := cfg.DB.Postgres
	dsn := node.DSN(pg.Prefix, sessionParams(cfg))

	logger := log.With().
		Str("name", name).
		Str("host", node.Host).
		Str("port", node.Port).
		Str("dbName", pg.Prefix+node.Name).
		Logger()

	attempts := max(pg.MaxRetry, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxOpenConns(pg.Pool.MaxOpen)
			db.SetMaxIdleConns(pg.Pool.MaxIdle)
			db.SetConnMaxLifetime(time.Duration(pg.Pool.MaxLifetimeMin) * time.Minute)

			logger.Info().Int("maxOpen", pg.Pool.MaxOpen).Msg("Connected to database")

			return db, nil
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		if attempt < attempts {
			time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
		}
	}

	return nil, fmt.Errorf("%w: %s after %d attempts", ErrUnreachable, name, attempts)
}
