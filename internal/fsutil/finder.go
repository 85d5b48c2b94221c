// Package fsutil locates project configuration files on disk.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigExtension is the extension every project configuration file carries.
const ConfigExtension = ".hcl"

// ErrUnsupportedFile is returned when a path names a file that is not a
// project configuration file.
var ErrUnsupportedFile = errors.New("unsupported config file")

// FindConfigFiles resolves path to the configuration files it stands for. A
// directory is walked recursively and yields its .hcl files in lexical order.
// A file is returned as is when it carries the .hcl extension.
func FindConfigFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		if filepath.Ext(path) != ConfigExtension {
			return nil, fmt.Errorf("%w: %s does not have the %s extension", ErrUnsupportedFile, path, ConfigExtension)
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == ConfigExtension {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s for config files: %w", path, err)
	}
	return files, nil
}
