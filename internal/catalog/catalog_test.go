package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keybox9823/apollo/pkg/protocol"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Hello World", TitleCase("hello_world"))
	assert.Equal(t, "Mkz Standard Debug", TitleCase("mkz_standard_debug"))
	assert.Equal(t, "Navigation", TitleCase("navigation"))
	assert.Equal(t, "A  B", TitleCase("a__b"))
	assert.Equal(t, "", TitleCase(""))
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	modesDir := filepath.Join(root, "modes")
	mapsDir := filepath.Join(root, "maps")
	vehiclesDir := filepath.Join(root, "vehicles")

	writeFile(t, filepath.Join(modesDir, "standard_debug.yaml"), "modules: {}\n")
	writeFile(t, filepath.Join(modesDir, "navigation.yaml"), "modules: {}\n")
	writeFile(t, filepath.Join(modesDir, "notes.txt"), "not a mode\n")
	require.NoError(t, os.MkdirAll(filepath.Join(mapsDir, "sunnyvale_big_loop"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(vehiclesDir, "mkz_example"), 0o755))

	cat, err := Load(protocol.CatalogConfig{
		ModesDir:    modesDir,
		MapsDir:     mapsDir,
		VehiclesDir: vehiclesDir,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Navigation", "Standard Debug"}, cat.ModeNames())
	assert.Equal(t, filepath.Join(modesDir, "standard_debug.yaml"), cat.Modes["Standard Debug"])
	assert.Equal(t, []string{"Sunnyvale Big Loop"}, cat.MapNames())
	assert.Equal(t, []string{"Mkz Example"}, cat.VehicleNames())
}

func TestLoad_NoModesIsFatal(t *testing.T) {
	root := t.TempDir()
	modesDir := filepath.Join(root, "modes")
	require.NoError(t, os.MkdirAll(modesDir, 0o755))

	_, err := Load(protocol.CatalogConfig{ModesDir: modesDir})
	assert.Error(t, err)

	_, err = Load(protocol.CatalogConfig{ModesDir: filepath.Join(root, "missing")})
	assert.Error(t, err)
}

func TestLoad_MissingMapsDirIsTolerated(t *testing.T) {
	root := t.TempDir()
	modesDir := filepath.Join(root, "modes")
	writeFile(t, filepath.Join(modesDir, "debug.yaml"), "modules: {}\n")

	cat, err := Load(protocol.CatalogConfig{
		ModesDir:    modesDir,
		MapsDir:     filepath.Join(root, "no_maps"),
		VehiclesDir: filepath.Join(root, "no_vehicles"),
	})
	require.NoError(t, err)
	assert.Empty(t, cat.Maps)
	assert.Empty(t, cat.Vehicles)
}
