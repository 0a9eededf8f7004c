package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
	"github.com/keybox9823/apollo/pkg/protocol"
)

const launcherCommand = "mainboard"

// LoadMode parses a mode definition file lazily, i.e. only when the mode is
// about to become active. Cyber modules are expanded into plain modules with
// constructed start/stop commands; a cyber module without dag files cannot be
// located for monitoring and is rejected.
func LoadMode(name, path string) (protocol.ModeDefinition, error) {
	def := protocol.ModeDefinition{Name: name}

	data, err := os.ReadFile(path)
	if err != nil {
		return def, errors.New(errors.ErrCodeModeInvalid, "LoadMode",
			"cannot read mode file "+path, err)
	}
	var file protocol.ModeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return def, errors.New(errors.ErrCodeModeInvalid, "LoadMode",
			"cannot parse mode file "+path, err)
	}

	def.Modules = make(map[string]protocol.ModuleDefinition, len(file.Modules)+len(file.CyberModules))
	for moduleName, module := range file.Modules {
		if len(module.WatchKeywords) == 0 {
			return def, errors.New(errors.ErrCodeModeInvalid, "LoadMode",
				fmt.Sprintf("module %s in %s declares no watch keywords", moduleName, path), nil)
		}
		def.Modules[moduleName] = module
	}
	for moduleName, cyber := range file.CyberModules {
		if len(cyber.DagFiles) == 0 {
			return def, errors.New(errors.ErrCodeModeInvalid, "LoadMode",
				fmt.Sprintf("no dag file provided for module %s in %s", moduleName, path), nil)
		}
		def.Modules[moduleName] = expandCyberModule(cyber)
	}
	def.MonitoredComponents = append([]string(nil), file.MonitoredComponents...)

	logger.Log.Info("Loaded mode", "name", name, "modules", len(def.Modules),
		"monitored_components", len(def.MonitoredComponents))
	return def, nil
}

// expandCyberModule constructs the start/stop commands of a mainboard-hosted
// module. Declared dag file order is preserved in the emitted flags.
func expandCyberModule(cyber protocol.CyberModule) protocol.ModuleDefinition {
	var start strings.Builder
	start.WriteString("nohup " + launcherCommand)
	if cyber.ProcessGroup != "" {
		start.WriteString(" -p " + cyber.ProcessGroup)
	}
	for _, dag := range cyber.DagFiles {
		start.WriteString(" -d " + dag)
	}
	start.WriteString(" &")

	firstDag := cyber.DagFiles[0]
	return protocol.ModuleDefinition{
		StartCommand:      start.String(),
		StopCommand:       fmt.Sprintf("pkill -f %q", firstDag),
		RequiredForSafety: cyber.RequiredForSafety,
		WatchKeywords:     []string{launcherCommand, firstDag},
	}
}
