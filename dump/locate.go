package dump

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// DumpFileName is the fixed name the layer gives its crash dump.
const DumpFileName = "cdl_dump.yaml"

// Locate walks root looking for the single cdl_dump.yaml beneath it.
// A second match fails at the point of discovery rather than after the
// walk, so the error names both offenders.
func Locate(root string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != DumpFileName {
			return nil
		}
		if found != "" {
			return fmt.Errorf("%w: %s and %s", ErrAmbiguousDump, found, path)
		}
		found = path
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%w: no %s under %s", ErrNoDump, DumpFileName, root)
	}
	return found, nil
}
