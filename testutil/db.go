// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"pedeai/configs"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated sqlite database in a temp dir that is removed when
// the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &configs.Config{DBDriver: "sqlite", DBSource: filepath.Join(t.TempDir(), "test.db")}
	db, err := configs.OpenDB(cfg)
	require.NoError(t, err)
	require.NoError(t, configs.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
