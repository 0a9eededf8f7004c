// Package vehicle activates vehicle profiles: switching vehicles copies the
// selected profile's configuration files into the shared runtime data
// directory that the rest of the stack reads from.
package vehicle

import (
	"io"
	"os"
	"path/filepath"

	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
)

// Manager applies vehicle profiles to a runtime data directory.
type Manager struct {
	dataDir string
}

// NewManager creates a Manager targeting the given runtime data directory.
func NewManager(dataDir string) *Manager {
	return &Manager{dataDir: dataDir}
}

// Activate copies every regular file of the profile directory into the
// runtime data directory. Modules started afterwards pick up the new
// calibration. Failure leaves the stack with an inconsistent vehicle setup,
// so callers treat it as fatal to the vehicle change.
func (m *Manager) Activate(profileDir string) error {
	entries, err := os.ReadDir(profileDir)
	if err != nil {
		return errors.New(errors.ErrCodeVehicleActivate, "Activate",
			"cannot read vehicle profile "+profileDir, err)
	}
	if err := os.MkdirAll(m.dataDir, 0o755); err != nil {
		return errors.New(errors.ErrCodeVehicleActivate, "Activate",
			"cannot create data dir "+m.dataDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(profileDir, entry.Name())
		dst := filepath.Join(m.dataDir, entry.Name())
		if err := copyFile(src, dst); err != nil {
			return errors.New(errors.ErrCodeVehicleActivate, "Activate",
				"cannot install "+entry.Name(), err)
		}
	}
	logger.Log.Info("Activated vehicle profile", "profile", profileDir, "data_dir", m.dataDir)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
