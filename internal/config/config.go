package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfigDir overrides the directory settings and history live in.
	EnvConfigDir = "YORLANG_CONFIG_DIR"
	appDirName   = "yorlang"
)

// Dir returns the configuration directory. It falls back to the working
// directory when the user config dir cannot be resolved.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return filepath.Join(".", "."+appDirName)
	}
	return filepath.Join(base, appDirName)
}

// HistoryPath is where the REPL keeps its line history unless settings
// name another file.
func HistoryPath(s Settings) string {
	if p := strings.TrimSpace(s.REPL.HistoryFile); p != "" {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(Dir(), p)
	}
	return filepath.Join(Dir(), "history")
}
