package main

import (
	"os"
	"path/filepath"

	"github.com/heshanpadmasiri/lambdaref/scan"
	"github.com/pelletier/go-toml/v2"
)

const defaultConfigFile = "Config.toml"

// config is the on-disk scan configuration
type config struct {
	LanguageLevel int      `toml:"language_level"`
	Include       []string `toml:"include"`
	Exclude       []string `toml:"exclude"`
	Workers       int      `toml:"workers"`
	Strict        bool     `toml:"strict"`
}

// loadConfig reads scan options from path, or from Config.toml in the working
// directory when path is empty. A missing or invalid file yields the defaults.
func loadConfig(path string) scan.Options {
	opts := scan.DefaultOptions()

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return opts
		}
		path = filepath.Join(wd, defaultConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("no configuration at %s", path)
		return opts
	}

	var fileConfig config
	if err := toml.Unmarshal(data, &fileConfig); err != nil {
		log.Warningf("ignoring invalid configuration %s: %s", path, err)
		return opts
	}

	if fileConfig.LanguageLevel != 0 {
		opts.LanguageLevel = fileConfig.LanguageLevel
	}
	if fileConfig.Include != nil {
		opts.Include = fileConfig.Include
	}
	if fileConfig.Exclude != nil {
		opts.Exclude = fileConfig.Exclude
	}
	if fileConfig.Workers > 0 {
		opts.Workers = fileConfig.Workers
	}
	opts.Strict = fileConfig.Strict

	return opts
}
