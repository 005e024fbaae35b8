package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/skillhub-labs/skillhub/internal/branding"
	"github.com/skillhub-labs/skillhub/internal/errdefs"
)

const fileType = "json"

// Install destinations accepted by local.install_default.
const (
	InstallWorkspace = "workspace"
	InstallGlobal    = "global"
)

// DefaultBranch is the registry branch used when registry.branch is unset.
const DefaultBranch = "main"

// sections lists the only top-level keys the config command may write.
var sections = map[string]bool{
	"local":    true,
	"registry": true,
}

// Config is the parsed configuration document. It is loaded once per
// command invocation and passed to the components that need it.
type Config struct {
	Local    LocalConfig    `mapstructure:"local"`
	Registry RegistryConfig `mapstructure:"registry"`

	path string
}

// LocalConfig holds the "local" section.
type LocalConfig struct {
	SkillPath      string `mapstructure:"skill_path"`
	InstallDefault string `mapstructure:"install_default"`
}

// RegistryConfig holds the "registry" section.
type RegistryConfig struct {
	URL      string `mapstructure:"url"`
	Branch   string `mapstructure:"branch"`
	CacheDir string `mapstructure:"cache_dir"`
}

// Dir returns the skillhub home directory (~/.skillhub/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// ResolvePath picks the config file location: the explicit flag value,
// then $SKILLHUB_CONFIG, then ~/.skillhub/config.json.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(branding.EnvVar("CONFIG")); v != "" {
		return v
	}
	return filepath.Join(Dir(), branding.ConfigFile())
}

// Load reads the configuration document at path. A missing file yields the
// defaults. SKILLHUB_<SECTION>_<KEY> environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if exists, err := fileExists(path); err != nil {
		return nil, err
	} else if exists {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errdefs.ErrUserInput, "reading config file %s: %v", path, err)
		}
	}

	cfg := &Config{path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(errdefs.ErrUserInput, "decoding config file %s: %v", path, err)
	}
	return cfg, nil
}

// Get returns the effective value for a section.key path.
func Get(path, key string) (string, error) {
	section, name, err := splitKey(key)
	if err != nil {
		return "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	switch key {
	case "local.skill_path":
		return cfg.Local.SkillPath, nil
	case "local.install_default":
		return cfg.Local.InstallDefault, nil
	case "registry.url":
		return cfg.Registry.URL, nil
	case "registry.branch":
		return cfg.Registry.Branch, nil
	case "registry.cache_dir":
		return cfg.MirrorDir(), nil
	}

	// Keys outside the typed sections are read verbatim from the file.
	doc, err := readDocument(path)
	if err != nil {
		return "", err
	}
	sec, _ := doc[section].(map[string]interface{})
	return formatValue(sec[name])
}

// Set writes one section.key value. The raw document is read, the one key
// changed, and the full document written back with nothing in between, so
// keys skillhub does not know keep their exact spelling. There is no
// locking: concurrent writers race and the last one wins.
func Set(path, key, value string) error {
	section, name, err := splitKey(key)
	if err != nil {
		return err
	}
	if key == "local.install_default" && value != InstallWorkspace && value != InstallGlobal {
		return errdefs.UserInput("local.install_default must be %q or %q, got %q", InstallWorkspace, InstallGlobal, value)
	}

	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = skeleton()
	}

	sec, ok := doc[section].(map[string]interface{})
	if !ok {
		if doc[section] != nil {
			return errdefs.UserInput("config section %q in %s is not an object", section, path)
		}
		sec = make(map[string]interface{})
		doc[section] = sec
	}
	sec[name] = value

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding config document")
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating config directory %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing config file %s", path)
	}
	return nil
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string { return c.path }

// MirrorDir returns where the registry mirror lives: registry.cache_dir, or
// .registry_cache next to the config file.
func (c *Config) MirrorDir() string {
	if c.Registry.CacheDir != "" {
		return c.Registry.CacheDir
	}
	return filepath.Join(filepath.Dir(c.path), branding.CacheDir())
}

// Branch returns the registry branch, defaulting to main.
func (c *Config) Branch() string {
	if c.Registry.Branch == "" {
		return DefaultBranch
	}
	return c.Registry.Branch
}

// RegistryURL returns the configured remote or an error telling the user
// how to set it.
func (c *Config) RegistryURL() (string, error) {
	if strings.TrimSpace(c.Registry.URL) == "" {
		return "", errors.Wrapf(errdefs.ErrRegistryUnreachable,
			"registry.url is not configured; run '%s config registry.url <git-url>'", branding.CLIName())
	}
	return c.Registry.URL, nil
}

// InstallRoot computes the install destination root. "global" installs go
// to local.skill_path; anything else goes to <cwd>/.agent/skills.
func (c *Config) InstallRoot(cwd string) (string, error) {
	if c.Local.InstallDefault == InstallGlobal {
		if c.Local.SkillPath == "" {
			return "", errdefs.UserInput("local.install_default is %q but local.skill_path is empty", InstallGlobal)
		}
		return c.Local.SkillPath, nil
	}
	return WorkspaceSkillsPath(cwd), nil
}

// SearchPaths returns the directories scanned for local skills: the
// workspace skills directory first, then the global skill path.
func (c *Config) SearchPaths(cwd string) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, p := range []string{WorkspaceSkillsPath(cwd), c.Local.SkillPath} {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		paths = append(paths, clean)
	}
	return paths
}

// WorkspaceSkillsPath returns <cwd>/.agent/skills.
func WorkspaceSkillsPath(cwd string) string {
	return filepath.Join(cwd, branding.WorkspaceSkillsDir())
}

// splitKey validates a two-level section.key path.
func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errdefs.UserInput("invalid config key %q: expected <section>.<key>", key)
	}
	if !sections[parts[0]] {
		return "", "", errdefs.UserInput("invalid config key %q: unknown section %q (want local or registry)", key, parts[0])
	}
	return parts[0], parts[1], nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("local.skill_path", filepath.Join(Dir(), "skills"))
	v.SetDefault("local.install_default", InstallWorkspace)
	v.SetDefault("registry.url", "")
	v.SetDefault("registry.branch", DefaultBranch)
	v.SetDefault("registry.cache_dir", "")
}

// skeleton is the documented shape of a brand-new config file.
func skeleton() map[string]interface{} {
	return map[string]interface{}{
		"local": map[string]interface{}{
			"skill_path":      filepath.Join(Dir(), "skills"),
			"install_default": InstallWorkspace,
		},
		"registry": map[string]interface{}{
			"url": "",
		},
	}
}

// readDocument decodes the config file as a generic JSON object. It returns
// nil when the file does not exist. Numbers are kept as json.Number so they
// are written back unchanged.
func readDocument(path string) (map[string]interface{}, error) {
	exists, err := fileExists(path)
	if err != nil || !exists {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	doc := make(map[string]interface{})
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrapf(errdefs.ErrUserInput, "reading config file %s: %v", path, err)
	}
	return doc, nil
}

func formatValue(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encoding config value")
	}
	return string(data), nil
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "checking config file %s", path)
	}
	if info.IsDir() {
		return false, errdefs.UserInput("config path %s is a directory", path)
	}
	return true, nil
}
