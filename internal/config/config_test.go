package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhub-labs/skillhub/internal/errdefs"
)

func writeJSON(t *testing.T, path string, doc map[string]interface{}) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func readJSON(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, InstallWorkspace, cfg.Local.InstallDefault)
	assert.Equal(t, filepath.Join(home, ".skillhub", "skills"), cfg.Local.SkillPath)
	assert.Equal(t, "main", cfg.Branch())
	assert.Equal(t, filepath.Join(filepath.Dir(path), ".registry_cache"), cfg.MirrorDir())

	_, err = cfg.RegistryURL()
	assert.True(t, errors.Is(err, errdefs.ErrRegistryUnreachable))
}

func TestLoadReadsDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeJSON(t, path, map[string]interface{}{
		"local":    map[string]interface{}{"skill_path": "/opt/skills", "install_default": "global"},
		"registry": map[string]interface{}{"url": "git@example.com:org/hub.git", "branch": "trunk", "cache_dir": "/var/cache/hub"},
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/skills", cfg.Local.SkillPath)
	assert.Equal(t, InstallGlobal, cfg.Local.InstallDefault)
	assert.Equal(t, "trunk", cfg.Branch())
	assert.Equal(t, "/var/cache/hub", cfg.MirrorDir())
	url, err := cfg.RegistryURL()
	require.NoError(t, err)
	assert.Equal(t, "git@example.com:org/hub.git", url)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeJSON(t, path, map[string]interface{}{
		"registry": map[string]interface{}{"url": "file-url"},
	})
	t.Setenv("SKILLHUB_REGISTRY_URL", "env-url")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-url", cfg.Registry.URL)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUserInput))
}

func TestSetPreservesRestOfDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeJSON(t, path, map[string]interface{}{
		"local":    map[string]interface{}{"skill_path": "/opt/skills", "install_default": "workspace", "note": "keep me"},
		"registry": map[string]interface{}{"url": "https://example.com/hub.git"},
	})

	require.NoError(t, Set(path, "local.install_default", "global"))

	doc := readJSON(t, path)
	local := doc["local"].(map[string]interface{})
	registry := doc["registry"].(map[string]interface{})
	assert.Equal(t, "global", local["install_default"])
	assert.Equal(t, "/opt/skills", local["skill_path"])
	assert.Equal(t, "keep me", local["note"])
	assert.Equal(t, "https://example.com/hub.git", registry["url"])
}

func TestSetKeepsKeySpellingAndNesting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeJSON(t, path, map[string]interface{}{
		"local":  map[string]interface{}{"skill_path": "/opt/skills", "CustomKey": "X"},
		"extras": map[string]interface{}{"a.b": 1, "Mixed": true, "big": 12345678901234567},
	})

	require.NoError(t, Set(path, "registry.url", "v"))

	doc := readJSON(t, path)
	assert.Equal(t, map[string]interface{}{"skill_path": "/opt/skills", "CustomKey": "X"}, doc["local"])
	assert.Equal(t, map[string]interface{}{"url": "v"}, doc["registry"])

	extras := doc["extras"].(map[string]interface{})
	assert.Len(t, extras, 3)
	assert.Contains(t, extras, "a.b")
	assert.Equal(t, true, extras["Mixed"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "12345678901234567")

	got, err := Get(path, "local.CustomKey")
	require.NoError(t, err)
	assert.Equal(t, "X", got)
}

func TestSetRejectsNonObjectSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"registry": "oops"}`), 0644))

	err := Set(path, "registry.url", "v")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUserInput))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"registry": "oops"}`, string(raw))
}

func TestSetAndGetRejectCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	err := Set(path, "local.color", "blue")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUserInput))

	_, err = Get(path, "local.color")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUserInput))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw), "a corrupt file is never overwritten")
}

func TestSetCreatesSkeleton(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	require.NoError(t, Set(path, "registry.url", "https://example.com/hub.git"))

	doc := readJSON(t, path)
	require.Contains(t, doc, "local")
	local := doc["local"].(map[string]interface{})
	assert.Equal(t, "workspace", local["install_default"])
	assert.Equal(t, "https://example.com/hub.git", doc["registry"].(map[string]interface{})["url"])
}

func TestSetRejectsInvalidKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	for _, key := range []string{"local", "local.a.b", "plugins.url", ".url", "local.", ""} {
		t.Run(key, func(t *testing.T) {
			err := Set(path, key, "x")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errdefs.ErrUserInput))
		})
	}
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "rejected keys must not create the file")
}

func TestSetValidatesInstallDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := Set(path, "local.install_default", "everywhere")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrUserInput))
}

func TestGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeJSON(t, path, map[string]interface{}{
		"local":    map[string]interface{}{"skill_path": "/opt/skills", "color": "blue"},
		"registry": map[string]interface{}{"url": "u"},
	})

	got, err := Get(path, "local.skill_path")
	require.NoError(t, err)
	assert.Equal(t, "/opt/skills", got)

	got, err = Get(path, "local.color")
	require.NoError(t, err)
	assert.Equal(t, "blue", got)

	_, err = Get(path, "nope.key")
	assert.Error(t, err)
}

func TestInstallRoot(t *testing.T) {
	cwd := t.TempDir()

	tests := []struct {
		name    string
		local   LocalConfig
		want    string
		wantErr bool
	}{
		{"global", LocalConfig{SkillPath: "/opt/skills", InstallDefault: "global"}, "/opt/skills", false},
		{"workspace", LocalConfig{SkillPath: "/opt/skills", InstallDefault: "workspace"}, filepath.Join(cwd, ".agent", "skills"), false},
		{"unset", LocalConfig{SkillPath: "/opt/skills"}, filepath.Join(cwd, ".agent", "skills"), false},
		{"global without path", LocalConfig{InstallDefault: "global"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Local: tt.local}
			got, err := cfg.InstallRoot(cwd)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errdefs.ErrUserInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchPaths(t *testing.T) {
	cwd := "/work"
	cfg := &Config{Local: LocalConfig{SkillPath: "/opt/skills"}}
	assert.Equal(t, []string{filepath.Join("/work", ".agent", "skills"), "/opt/skills"}, cfg.SearchPaths(cwd))

	cfg = &Config{Local: LocalConfig{SkillPath: "/work/.agent/skills/"}}
	assert.Equal(t, []string{filepath.Join("/work", ".agent", "skills")}, cfg.SearchPaths(cwd))
}
