package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/meshskel/pkg/errors"
)

// readInput reads a skeleton record from path.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}

// outputBase returns the directory and file prefix that outputs derived from
// input are written under. An empty dir means next to the input.
func outputBase(input, dir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		return filepath.Join(filepath.Dir(input), base), nil
	}
	if err := errors.ValidateOutputPath(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filepath.Join(dir, base), nil
}
