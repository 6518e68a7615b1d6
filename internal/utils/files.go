package utils

import (
	"io/fs"
	"path/filepath"
)

// sourceExtensions are the recognized SiMAL source file extensions.
var sourceExtensions = map[string]bool{
	".simal": true,
	".siml":  true,
}

// FindSourceFiles recursively finds all .simal and .siml files under dir,
// in lexical walk order.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if sourceExtensions[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
