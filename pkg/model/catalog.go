package model

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/xerror"
)

// Extension is the file extension of cascade definitions.
const Extension = ".xml"

var fs afero.Fs = afero.NewOsFs()

// Catalog lists the cascade definitions found in one directory.
type Catalog struct {
	dir string
}

func NewCatalog(dir string) Catalog {
	return Catalog{dir: dir}
}

func (c Catalog) Dir() string {
	return c.dir
}

// List returns the sorted model names, extension stripped.
func (c Catalog) List() ([]string, error) {
	entries, err := afero.ReadDir(fs, c.dir)
	if err != nil {
		return nil, xerror.Errorf("unable to list models in [%s]: %w", c.dir, err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Path resolves a model name, with or without extension, to the file
// that defines it.
func (c Catalog) Path(name string) (string, error) {
	name = Name(name)
	if len(name) == 0 {
		return "", xerror.Errorf("%w: empty model name", ErrNotFound)
	}

	path := filepath.Join(c.dir, name+Extension)
	info, err := fs.Stat(path)
	if err != nil || info.IsDir() {
		return "", xerror.Errorf("%w: [%s] in [%s]", ErrNotFound, name, c.dir)
	}
	return path, nil
}

// Name normalises a model name to its extensionless form.
func Name(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	if strings.EqualFold(filepath.Ext(name), Extension) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
