package bots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry, err := OpenRegistry(filepath.Join(t.TempDir(), "bots.json"))
	require.NoError(t, err)
	return registry
}

func TestCreateBot(t *testing.T) {
	registry := openTestRegistry(t)

	bot, err := registry.Create("DelphiBot")
	require.NoError(t, err)
	assert.NotEmpty(t, bot.Id)
	assert.Equal(t, "DelphiBot", bot.Name)
	assert.False(t, bot.IsActive)
	assert.False(t, bot.IsExisting)
}

func TestCreateBotNameConflictIsCaseInsensitive(t *testing.T) {
	registry := openTestRegistry(t)

	_, err := registry.Create("DelphiBot")
	require.NoError(t, err)

	_, err = registry.Create("delphibot")
	assert.ErrorIs(t, err, ErrBotNameExists)

	// There is no cap on the registry size.
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := registry.Create(name)
		require.NoError(t, err)
	}
	assert.Len(t, registry.List(), 6)
}

func TestToggleBot(t *testing.T) {
	registry := openTestRegistry(t)

	_, err := registry.Create("DelphiBot")
	require.NoError(t, err)

	bot, err := registry.Toggle("DELPHIBOT", true)
	require.NoError(t, err)
	assert.True(t, bot.IsActive)

	bot, err = registry.Toggle("delphibot", false)
	require.NoError(t, err)
	assert.False(t, bot.IsActive)
}

func TestToggleUnknownBot(t *testing.T) {
	registry := openTestRegistry(t)

	_, err := registry.Toggle("nobody", true)
	assert.ErrorIs(t, err, ErrBotNotFound)
}

func TestClearNonExistingKeepsSeededBots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bots.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bots": {
			"seed": {"id": "seed", "name": "SeedBot", "is_active": true, "timestamp": "2024-01-01T10:00:00Z", "is_existing": true}
		}
	}`), 0644))
	registry, err := OpenRegistry(path)
	require.NoError(t, err)

	_, err = registry.Create("Temporary")
	require.NoError(t, err)
	require.Len(t, registry.List(), 2)

	require.NoError(t, registry.ClearNonExisting())

	list := registry.List()
	require.Len(t, list, 1)
	assert.Equal(t, "SeedBot", list[0].Name)
	assert.True(t, list[0].IsActive)
}

func TestRegistryReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bots.json")
	registry, err := OpenRegistry(path)
	require.NoError(t, err)

	_, err = registry.Create("DelphiBot")
	require.NoError(t, err)
	_, err = registry.Toggle("DelphiBot", true)
	require.NoError(t, err)

	reloaded, err := OpenRegistry(path)
	require.NoError(t, err)
	list := reloaded.List()
	require.Len(t, list, 1)
	assert.Equal(t, "DelphiBot", list[0].Name)
	assert.True(t, list[0].IsActive)
}
