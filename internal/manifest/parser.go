package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Path returns the descriptor path inside a skill directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists reports whether dir already has a descriptor.
func Exists(dir string) (bool, error) {
	_, err := os.Stat(Path(dir))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "checking %s", Path(dir))
}

// Load reads the descriptor in dir and fills defaults for omitted fields.
// The file itself is not rewritten.
func Load(dir string) (*Descriptor, error) {
	data, err := readFile(Path(dir))
	if err != nil {
		return nil, err
	}
	return Parse(data, Path(dir))
}

// Parse decodes descriptor JSON. source is only used in error messages.
func Parse(data []byte, source string) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrapf(err, "parsing descriptor %s", source)
	}
	d.applyDefaults()
	return &d, nil
}

// Save writes d as indented JSON into dir.
func Save(dir string, d *Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding descriptor")
	}
	data = append(data, '\n')
	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", Path(dir))
	}
	return nil
}

// Ensure loads the descriptor in dir, first writing the default one when
// the directory has none. created reports whether a file was written.
func Ensure(dir string) (d *Descriptor, created bool, err error) {
	exists, err := Exists(dir)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		if err := Save(dir, Default(dir)); err != nil {
			return nil, false, err
		}
		created = true
	}
	d, err = Load(dir)
	if err != nil {
		return nil, created, err
	}
	return d, created, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading file %s", path)
	}
	return data, nil
}
