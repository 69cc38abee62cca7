package files

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
)

// Manager stores uploaded files and resolves paths inside the data layout
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger.With(slog.String("component", "file_manager"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// SaveUpload copies r into the uploads directory and returns the stored
// path. The stored name keeps the original base name behind a unique prefix
// so concurrent uploads of the same file never collide.
func (m *Manager) SaveUpload(name string, r io.Reader) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	dst := m.paths.UploadPath(uuid.NewString()[:8] + "_" + base)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", apperrors.NewStorageError("create upload directory for", dst, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", apperrors.NewStorageError("create", dst, err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(dst)
		return "", apperrors.NewStorageError("write", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", apperrors.NewStorageError("close", dst, err)
	}

	m.logger.Info("upload stored",
		slog.String("name", base),
		slog.String("path", dst),
		slog.Int64("size_bytes", n))
	return dst, nil
}

// OriginalName strips the prefix SaveUpload adds
func OriginalName(stored string) string {
	base := filepath.Base(stored)
	if i := strings.IndexByte(base, '_'); i == 8 {
		return base[i+1:]
	}
	return base
}

// RemoveFiles deletes paths, ignoring files that are already gone
func (m *Manager) RemoveFiles(paths []string) error {
	for _, p := range paths {
		full := m.resolvePath(p)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return apperrors.NewStorageError("remove", full, err)
		}
		m.logger.Debug("file removed", slog.String("path", full))
	}
	return nil
}

// ListFiles returns the names of all files in a directory (non-recursive)
func (m *Manager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.resolvePath(dir))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// resolvePath resolves a path relative to the appropriate base directory
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "uploads/"):
		return m.paths.UploadPath(strings.TrimPrefix(path, "uploads/"))
	case strings.HasPrefix(path, "exports/"):
		return m.paths.ExportPath(strings.TrimPrefix(path, "exports/"))
	case strings.HasPrefix(path, "reports/"):
		return m.paths.ReportPath(strings.TrimPrefix(path, "reports/"))
	case strings.HasPrefix(path, "logs/"):
		return m.paths.LogPath(strings.TrimPrefix(path, "logs/"))
	default:
		return filepath.Join(m.paths.DataDir, path)
	}
}
