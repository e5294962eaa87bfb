package main

import (
	"os"
	"path/filepath"
)

const configBaseName = "pmasim"

// configCandidatePaths returns configuration files per format in priority
// order: userPath, the working directory, then the user config directory.
func configCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	dirs := []string{}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if cfg, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(cfg, configBaseName))
	}
	for _, dir := range dirs {
		base := filepath.Join(dir, configBaseName)
		add(&jsonPaths, base+".json")
		add(&yamlPaths, base+".yaml")
		add(&yamlPaths, base+".yml")
		add(&tomlPaths, base+".toml")
	}
	return jsonPaths, yamlPaths, tomlPaths
}
