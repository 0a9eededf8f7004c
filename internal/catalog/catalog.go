package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

const modeFileExtension = ".yaml"

// Catalog enumerates the operating modes, maps and vehicle profiles available
// to the supervisor. It is built once at startup and read-only afterwards, so
// concurrent reads need no synchronization.
type Catalog struct {
	// Modes maps mode title to the mode definition file path.
	Modes map[string]string
	// Maps maps map title to the map data directory.
	Maps map[string]string
	// Vehicles maps vehicle title to the vehicle profile directory.
	Vehicles map[string]string
}

// Load scans the configured directories. It fails when no mode definition is
// found: without a mode the supervisor has no valid state to enter.
func Load(cfg protocol.CatalogConfig) (*Catalog, error) {
	modes, err := listFilesAsDict(cfg.ModesDir, modeFileExtension)
	if err != nil {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "LoadCatalog",
			"cannot list modes dir "+cfg.ModesDir, err)
	}
	if len(modes) == 0 {
		return nil, errors.New(errors.ErrCodeCatalogEmpty, "LoadCatalog",
			"no modes found under "+cfg.ModesDir, nil)
	}

	c := &Catalog{
		Modes:    modes,
		Maps:     listDirAsDict(cfg.MapsDir),
		Vehicles: listDirAsDict(cfg.VehiclesDir),
	}
	logger.Log.Info("Loaded catalog",
		"modes", len(c.Modes), "maps", len(c.Maps), "vehicles", len(c.Vehicles))
	return c, nil
}

// ModeNames returns the mode titles in sorted order.
func (c *Catalog) ModeNames() []string { return sortedKeys(c.Modes) }

// MapNames returns the map titles in sorted order.
func (c *Catalog) MapNames() []string { return sortedKeys(c.Maps) }

// VehicleNames returns the vehicle titles in sorted order.
func (c *Catalog) VehicleNames() []string { return sortedKeys(c.Vehicles) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TitleCase converts a file-system style name to a display title.
// E.g. "mkz_standard_debug" -> "Mkz Standard Debug".
func TitleCase(origin string) string {
	parts := strings.Split(origin, "_")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// listFilesAsDict lists files with the given extension as {title: path}.
func listFilesAsDict(dir, extension string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, extension) {
			continue
		}
		title := TitleCase(strings.TrimSuffix(name, extension))
		result[title] = filepath.Join(dir, name)
	}
	return result, nil
}

// listDirAsDict lists subdirectories as {title: path}. A missing parent
// directory yields an empty dict rather than an error: maps and vehicles are
// optional catalogs.
func listDirAsDict(dir string) map[string]string {
	result := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Log.Warn("Cannot list catalog dir", "dir", dir, "err", err)
		return result
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		result[TitleCase(entry.Name())] = filepath.Join(dir, entry.Name())
	}
	return result
}
