package config_test

import (
	"net/url"
	"testing"
	"travelo/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresNode_DSN(t *testing.T) {
	node := config.PostgresNode{
		Host:     "db.internal",
		Port:     "5432",
		Username: "travelo",
		Password: "p@ss/word",
		Name:     "ledger",
		Timezone: "UTC",
		SSLMode:  "require",
	}

	dsn := node.DSN("staging_", url.Values{"x-migrations-table": {"schema_migrations"}})

	parsed, err := url.Parse(dsn)
	require.NoError(t, err)

	password, _ := parsed.User.Password()

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "db.internal:5432", parsed.Host)
	assert.Equal(t, "/staging_ledger", parsed.Path)
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "require", parsed.Query().Get("sslmode"))
	assert.Equal(t, "UTC", parsed.Query().Get("timezone"))
	assert.Equal(t, "schema_migrations", parsed.Query().Get("x-migrations-table"))
}

func TestPostgresNode_DSN_LeavesParamsUntouched(t *testing.T) {
	params := url.Values{"application_name": {"travelo"}}

	config.PostgresNode{Host: "localhost", Port: "5432", SSLMode: "disable"}.DSN("", params)

	assert.Equal(t, url.Values{"application_name": {"travelo"}}, params)
}
