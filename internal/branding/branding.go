// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building. Go's
// //go:embed bakes it into the binary; missing keys fall back to the
// hard defaults below.
package branding

import (
	_ "embed"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName            string `yaml:"cli_name"`
	DisplayName        string `yaml:"display_name"`
	Description        string `yaml:"description"`
	HomeDir            string `yaml:"home_dir"`
	EnvPrefix          string `yaml:"env_prefix"`
	ConfigFile         string `yaml:"config_file"`
	CacheDir           string `yaml:"cache_dir"`
	WorkspaceSkillsDir string `yaml:"workspace_skills_dir"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:            "skillhub",
			DisplayName:        "Skill Hub",
			Description:        "Local-first package manager for reusable agent skills",
			HomeDir:            ".skillhub",
			EnvPrefix:          "SKILLHUB",
			ConfigFile:         "config.json",
			CacheDir:           ".registry_cache",
			WorkspaceSkillsDir: ".agent/skills",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "skillhub").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".skillhub").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "SKILLHUB").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ConfigFile returns the configuration file name (e.g., "config.json").
func ConfigFile() string { load(); return defaults.ConfigFile }

// CacheDir returns the registry mirror directory name (e.g., ".registry_cache").
// Published skills never contain a directory with this name.
func CacheDir() string { load(); return defaults.CacheDir }

// WorkspaceSkillsDir returns the workspace-relative skills directory in
// native path form (e.g., ".agent/skills").
func WorkspaceSkillsDir() string { load(); return filepath.FromSlash(defaults.WorkspaceSkillsDir) }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("CONFIG") → "SKILLHUB_CONFIG".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
