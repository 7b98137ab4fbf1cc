package upload

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Local writes uploads to a directory served as static files
type Local struct {
	Dir        string
	PublicPath string
}

// Upload writes the payload under Dir with a timestamped name and
// returns the relative public path. The original filename only
// contributes its extension.
func (l *Local) Upload(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("service-%d%s", time.Now().UnixNano(), filepath.Ext(filename))
	if err := os.WriteFile(filepath.Join(l.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return path.Join(l.PublicPath, name), nil
}
