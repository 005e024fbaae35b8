//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/skillhub-labs/skillhub/internal/registry"
	"github.com/skillhub-labs/skillhub/internal/vcs"
)

// machine is one user's view of the hub: a workspace with skills and a
// private registry mirror.
type machine struct {
	Workspace string
	SkillsDir string
	Mirror    *registry.Mirror
}

// testEnv holds an empty bare registry remote shared by several machines.
type testEnv struct {
	Remote string
	Git    *vcs.Git
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}

	remote := filepath.Join(t.TempDir(), "registry.git")
	_, err := git.PlainInitWithOptions(remote, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
		Bare:        true,
	})
	if err != nil {
		t.Fatalf("init bare remote: %v", err)
	}

	return &testEnv{
		Remote: remote,
		Git: &vcs.Git{Env: []string{
			"GIT_AUTHOR_NAME=Integration Test",
			"GIT_AUTHOR_EMAIL=it@example.com",
			"GIT_COMMITTER_NAME=Integration Test",
			"GIT_COMMITTER_EMAIL=it@example.com",
		}},
	}
}

func (e *testEnv) newMachine(t *testing.T) *machine {
	t.Helper()
	ws := t.TempDir()
	m := &machine{
		Workspace: ws,
		SkillsDir: filepath.Join(ws, ".agent", "skills"),
		Mirror:    registry.New(filepath.Join(t.TempDir(), ".registry_cache"), e.Remote, "main", e.Git),
	}
	if err := os.MkdirAll(m.SkillsDir, 0755); err != nil {
		t.Fatal(err)
	}
	return m
}

// addSkill creates a skill directory in the machine's workspace.
func (m *machine) addSkill(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(m.SkillsDir, name)
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected path to not exist: %s", path)
	}
}
