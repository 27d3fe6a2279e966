package content

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

// DirLoader loads resources from a file system. An identifier with an
// extension names a file directly; one without is tried with each of
// Extensions in turn.
//
// *[]byte and *string targets receive the raw file. Anything else is
// decoded as YAML.
type DirLoader struct {
	FS fs.FS
	// Extensions defaults to .yaml and .yml.
	Extensions []string
}

var defaultExtensions = []string{".yaml", ".yml"}

// Load implements Loader.
func (d DirLoader) Load(id string, dst any) error {
	if d.FS == nil {
		return fmt.Errorf("content: %q: no file system", id)
	}
	data, name, err := d.read(id)
	if err != nil {
		return err
	}
	switch t := dst.(type) {
	case *[]byte:
		*t = data
		return nil
	case *string:
		*t = string(data)
		return nil
	}
	if _, err := targetOf(dst); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("content: failed to parse %s: %w", name, err)
	}
	return nil
}

func (d DirLoader) read(id string) ([]byte, string, error) {
	if !fs.ValidPath(id) {
		return nil, "", fmt.Errorf("content: invalid identifier %q", id)
	}
	exts := d.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	names := []string{id}
	if path.Ext(id) == "" {
		names = names[:0]
		for _, ext := range exts {
			names = append(names, id+ext)
		}
	}
	for _, name := range names {
		data, err := fs.ReadFile(d.FS, name)
		if err == nil {
			return data, name, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, name, fmt.Errorf("content: failed to read %s: %w", name, err)
		}
	}
	return nil, "", fmt.Errorf("%w: %q", ErrNotFound, id)
}
