package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func writeDescriptor(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644); err != nil {
		t.Fatalf("writing descriptor: %v", err)
	}
}

func TestSkillID(t *testing.T) {
	tests := []struct {
		author, name, want string
	}{
		{"Anonymous", "pdf-writer", "Anonymous.pdf-writer"},
		{"Jane Doe", "My Tool", "Jane_Doe.My_Tool"},
		{"a  \t b", "x\ny", "a_b.x_y"},
		{"ACME", "Tool.v2", "ACME.Tool.v2"},
	}
	for _, tt := range tests {
		if got := SkillID(tt.author, tt.name); got != tt.want {
			t.Errorf("SkillID(%q, %q) = %q, want %q", tt.author, tt.name, got, tt.want)
		}
	}
}

func TestSkillIDProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		author := rapid.String().Draw(rt, "author")
		name := rapid.String().Draw(rt, "name")
		id := SkillID(author, name)

		if strings.ContainsAny(id, " \t\n\r\f\v") {
			rt.Fatalf("id %q contains whitespace", id)
		}
		if SkillID(author, name) != id {
			rt.Fatalf("SkillID is not deterministic")
		}
		if !strings.Contains(id, ".") {
			rt.Fatalf("id %q lost the separator", id)
		}
	})
}

func TestEnsureWritesDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pdf-writer")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	d, created, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !created {
		t.Error("expected descriptor to be created")
	}
	if d.Name != "pdf-writer" || d.Version != "1.0.0" || d.Author != "Anonymous" {
		t.Errorf("unexpected default descriptor: %+v", d)
	}
	if d.Description != DefaultDescription {
		t.Errorf("Description = %q", d.Description)
	}
	if d.ID() != "Anonymous.pdf-writer" {
		t.Errorf("ID() = %q", d.ID())
	}

	res, err := ValidateFile(Path(dir))
	if err != nil {
		t.Fatalf("ValidateFile: %v", err)
	}
	if !res.Valid {
		t.Errorf("default descriptor should validate: %s", res.Summary())
	}
}

func TestEnsureKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	body := `{"name": "custom", "author": "acme", "extra": true}`
	writeDescriptor(t, dir, body)

	d, created, err := Ensure(dir)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if created {
		t.Error("existing descriptor must not be rewritten")
	}
	if d.Version != DefaultVersion {
		t.Errorf("missing version should default, got %q", d.Version)
	}
	if d.ID() != "acme.custom" {
		t.Errorf("ID() = %q", d.ID())
	}

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != body {
		t.Errorf("file changed on load: %s", data)
	}
}

func TestLoadDedupesKeywords(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{"name": "k", "keywords": ["pdf", "docs", "pdf"]}`)

	d, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Keywords) != 2 || d.Keywords[0] != "pdf" || d.Keywords[1] != "docs" {
		t.Errorf("Keywords = %v", d.Keywords)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeDescriptor(t, dir, `{"name": `)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantValid   bool
		wantPath    string
		wantKeyword string
	}{
		{"minimal", `{"name": "x"}`, true, "", ""},
		{"full", `{"name": "x", "version": "2.1.0", "description": "d", "author": "a", "keywords": ["k"]}`, true, "", ""},
		{"missing name", `{"version": "1.0.0"}`, false, "", "required"},
		{"blank name", `{"name": "   "}`, false, "/name", "pattern"},
		{"numeric version", `{"name": "x", "version": 1}`, false, "/version", "type"},
		{"bad semver", `{"name": "x", "version": "one"}`, false, "/version", "semver"},
		{"keyword not string", `{"name": "x", "keywords": [1]}`, false, "/keywords/0", "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate([]byte(tt.body))
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, issues: %s", res.Valid, res.Summary())
			}
			if tt.wantValid {
				return
			}
			found := false
			for _, issue := range res.Issues {
				if issue.Path == tt.wantPath && issue.Keyword == tt.wantKeyword {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue at %q with keyword %q: %+v", tt.wantPath, tt.wantKeyword, res.Issues)
			}
		})
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if _, err := Validate([]byte("not json")); err == nil {
		t.Fatal("expected error for non-JSON input")
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.1", -1},
		{"v2.0.0", "2.0.0", 0},
		{"1.10.0", "1.9.0", 1},
	}
	for _, tt := range tests {
		got, err := CompareVersions(tt.a, tt.b)
		if err != nil {
			t.Fatalf("CompareVersions(%q, %q): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if _, err := CompareVersions("x", "1.0.0"); err == nil {
		t.Error("expected error for unparsable version")
	}
	if IsNewer("garbage", "1.0.0") {
		t.Error("unparsable version must not be newer")
	}
	if !IsNewer("1.2.0", "1.1.9") {
		t.Error("1.2.0 should be newer than 1.1.9")
	}
}
