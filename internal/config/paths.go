// Package config locates the user configuration of the ffi-cdecl command.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "ffi-cdecl"

// Dir returns the platform configuration directory of ffi-cdecl.
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appName), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName), nil
		}
		return "", errors.New("HOME not set")
	}
}

// CandidatePaths returns the configuration files to try, per format, most
// important first. userPath goes to the loader its extension selects.
func CandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			yamlPaths = append(yamlPaths, userPath)
		case ".toml":
			tomlPaths = append(tomlPaths, userPath)
		default:
			jsonPaths = append(jsonPaths, userPath)
		}
	}
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, filepath.Join(wd, "."+appName))
	}
	if dir, err := Dir(); err == nil {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		base := filepath.Join(dir, "config")
		jsonPaths = append(jsonPaths, base+".json")
		yamlPaths = append(yamlPaths, base+".yaml", base+".yml")
		tomlPaths = append(tomlPaths, base+".toml")
	}
	return
}
