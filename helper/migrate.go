package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"travelo/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

var ErrUnknownAction = errors.New("unknown migration action")

const migrationsSource = "file://migrations/postgres"

// actions maps a CLI verb to the migrate call that performs it.
var actions = map[string]struct {
	run  func(*migrate.Migrate) error
	done string
}{
	"up":      {run: (*migrate.Migrate).Up, done: "Database migrations completed successfully"},
	"step-up": {run: func(m *migrate.Migrate) error { return m.Steps(1) }, done: "Applied one migration"},
	"down":    {run: func(m *migrate.Migrate) error { return m.Steps(-1) }, done: "Rolled back one migration"},
	"drop":    {run: (*migrate.Migrate).Down, done: "Database migrations rolled back successfully"},
}

func getConnection(cfg *config.Config) (*migrate.Migrate, error) {
	pg := cfg.DB.Postgres
	dsn := pg.Write.DSN(pg.Prefix, url.Values{"x-migrations-table": {pg.MigrationTable}})

	mig, err := migrate.New(migrationsSource, dsn)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

// Runner applies a migration action against the write database.
func Runner(cfg *config.Config, name string) error {
	action, ok := actions[name]
	if !ok {
		return fmt.Errorf("%w: %q, use up, down, drop or step-up", ErrUnknownAction, name)
	}

	mig, err := getConnection(cfg)
	if err != nil {
		return err
	}

	defer mig.Close()

	if err := action.run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s: %w", name, err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", err)
	}

	log.Info().Str("action", name).Uint("version", version).Bool("dirty", dirty).Msg(action.done)

	return nil
}

func Up(cfg *config.Config) error {
	return Runner(cfg, "up")
}
