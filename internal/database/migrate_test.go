package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	for _, store := range []Store{Marketplace, Identity} {
		t.Run(string(store), func(t *testing.T) {
			entries, err := fs.ReadDir(migrationFS, store.migrationsDir())
			require.NoError(t, err)

			var up, down int
			for _, e := range entries {
				switch {
				case strings.HasSuffix(e.Name(), ".up.sql"):
					up++
				case strings.HasSuffix(e.Name(), ".down.sql"):
					down++
				}
			}
			assert.Greater(t, up, 0)
			assert.Equal(t, up, down)
		})
	}
}

func TestMigrationsTablesDiffer(t *testing.T) {
	assert.NotEqual(t, Marketplace.migrationsTable(), Identity.migrationsTable())
}
