package manifest

import (
	"path/filepath"
	"regexp"
)

// FileName is the descriptor sidecar stored at the root of a skill directory.
const FileName = "skill.json"

// Defaults applied to new descriptors and to fields missing from existing ones.
const (
	DefaultVersion     = "1.0.0"
	DefaultAuthor      = "Anonymous"
	DefaultDescription = "Replace with description"
)

// Descriptor is the metadata record of a publishable skill.
type Descriptor struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Keywords    []string `json:"keywords"`
}

// Default returns the descriptor synthesized for a directory that has none.
func Default(dir string) *Descriptor {
	return &Descriptor{
		Name:        filepath.Base(filepath.Clean(dir)),
		Version:     DefaultVersion,
		Description: DefaultDescription,
		Author:      DefaultAuthor,
		Keywords:    []string{},
	}
}

// ID returns the registry key for this descriptor.
func (d *Descriptor) ID() string {
	return SkillID(d.Author, d.Name)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SkillID derives the registry key "author.name", collapsing every run of
// whitespace to a single underscore. Case and punctuation are left alone,
// so "Jane Doe"/"My Tool" and "Jane_Doe"/"My_Tool" share an id.
func SkillID(author, name string) string {
	return whitespaceRun.ReplaceAllString(author+"."+name, "_")
}

// applyDefaults fills fields a hand-written descriptor may omit. Keywords
// are a set: duplicates are dropped, first occurrence wins.
func (d *Descriptor) applyDefaults() {
	if d.Version == "" {
		d.Version = DefaultVersion
	}
	if d.Author == "" {
		d.Author = DefaultAuthor
	}
	seen := make(map[string]bool, len(d.Keywords))
	keywords := make([]string, 0, len(d.Keywords))
	for _, k := range d.Keywords {
		if seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	d.Keywords = keywords
}
