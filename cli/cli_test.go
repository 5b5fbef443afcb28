package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"pedeai/configs"
	"pedeai/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range NewRootCommand().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestMigrateAndSeed(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "ops@pedeai.dev")
	t.Setenv("ADMIN_PASSWORD", "opspass")
	t.Setenv("LOG_LEVEL", "error")
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	require.NoError(t, run(t, "migrate", "--db-driver", "sqlite", "--db", dbPath))
	require.NoError(t, run(t, "seed", "--db", dbPath, "--file", filepath.Join("..", "seed", "catalog.yaml")))

	db, err := configs.OpenDB(&configs.Config{DBDriver: "sqlite", DBSource: dbPath})
	require.NoError(t, err)
	defer closeDB(db)

	var restaurants, admins int64
	require.NoError(t, db.Model(&entity.Restaurant{}).Count(&restaurants).Error)
	require.NoError(t, db.Model(&entity.User{}).Where("role = ?", entity.RoleAdmin).Count(&admins).Error)
	assert.Equal(t, int64(3), restaurants)
	assert.Equal(t, int64(1), admins)
}

func TestRootCommand_RejectsBadFlags(t *testing.T) {
	err := run(t, "migrate", "--db-driver", "mysql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")

	assert.Error(t, run(t, "migrate", "extra-arg"))
}
