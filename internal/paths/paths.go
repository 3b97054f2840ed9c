package paths

import (
	"os"
	"path/filepath"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// ToolkitDir returns ~/.toolkit.
func ToolkitDir() string {
	return filepath.Join(home(), ".toolkit")
}

// ConfigFile returns ~/.toolkit/config.yaml.
func ConfigFile() string {
	return filepath.Join(ToolkitDir(), "config.yaml")
}

// RegistryFile returns ~/.toolkit/profiles.yaml.
func RegistryFile() string {
	return RegistryFileIn(ToolkitDir())
}

// LogFile returns ~/.toolkit/toolkit.log.
func LogFile() string {
	return LogFileIn(ToolkitDir())
}

// RegistryFileIn returns the registry file path inside dir.
func RegistryFileIn(dir string) string {
	return filepath.Join(dir, "profiles.yaml")
}

// ActiveProfileFileIn returns the active-profile file path inside dir.
func ActiveProfileFileIn(dir string) string {
	return filepath.Join(dir, "active-profile")
}

// LogFileIn returns the log file path inside dir.
func LogFileIn(dir string) string {
	return filepath.Join(dir, "toolkit.log")
}
