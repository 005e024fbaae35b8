package scaffold

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/skillhub-labs/skillhub/internal/errdefs"
	"github.com/skillhub-labs/skillhub/internal/manifest"
)

//go:embed scaffolds
var scaffoldFS embed.FS

const templatesDir = "scaffolds/skill"

// ScaffoldData holds the template variables available to scaffold templates.
type ScaffoldData struct {
	Name        string
	Version     string
	Description string
	Author      string
}

// NewScaffoldData returns the default descriptor values for dir.
func NewScaffoldData(dir string) *ScaffoldData {
	d := manifest.Default(dir)
	return &ScaffoldData{
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		Author:      d.Author,
	}
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

var funcs = template.FuncMap{
	"json": func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// Init writes the skill templates into dir, which must already exist.
// An existing skill.json is only replaced when force is set.
func Init(dir string, force bool) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errdefs.UserInput("directory %s does not exist", dir)
		}
		return nil, fmt.Errorf("checking %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, errdefs.UserInput("%s is not a directory", dir)
	}

	exists, err := manifest.Exists(dir)
	if err != nil {
		return nil, err
	}
	if exists && !force {
		return nil, errdefs.UserInput("%s already exists; use --force to overwrite", manifest.Path(dir))
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	return Generate(NewScaffoldData(abs), dir)
}

// Generate renders every embedded template into outputDir and validates the
// resulting descriptor. Validation problems are reported as warnings.
func Generate(data *ScaffoldData, outputDir string) (*Result, error) {
	entries, err := fs.ReadDir(scaffoldFS, templatesDir)
	if err != nil {
		return nil, fmt.Errorf("template set not found: %w", err)
	}

	result := &Result{OutputDir: outputDir}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tmplPath := templatesDir + "/" + entry.Name()
		tmplBytes, err := fs.ReadFile(scaffoldFS, tmplPath)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", tmplPath, err)
		}

		tmpl, err := template.New(entry.Name()).Funcs(funcs).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		outPath := filepath.Join(outputDir, outName)
		if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		result.Files = append(result.Files, outName)
	}

	valResult, valErr := manifest.ValidateFile(manifest.Path(outputDir))
	if valErr != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not validate descriptor: %v", valErr))
	} else if !valResult.Valid {
		for _, issue := range valResult.Issues {
			result.Warnings = append(result.Warnings, issue.String())
		}
	}

	return result, nil
}
