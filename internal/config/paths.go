package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths is the resolved, absolute directory layout
type Paths struct {
	HomeDir    string
	DataDir    string
	UploadsDir string
	ExportsDir string
	ReportsDir string
	LogsDir    string
}

// GetPaths resolves pc against the home directory. The home directory is
// pc.HomeDir, else $SALESPULSE_HOME, else the executable's directory.
func GetPaths(pc PathsConfig) (*Paths, error) {
	home := pc.HomeDir
	if home == "" {
		home = os.Getenv(EnvPrefix + "_HOME")
	}
	if home == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		if exe, err = filepath.EvalSymlinks(exe); err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		home = filepath.Dir(exe)
	}

	home, err := filepath.Abs(home)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	resolve := func(dir, fallback string) string {
		if dir == "" {
			dir = fallback
		}
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(home, dir)
	}

	dataDir := resolve(pc.DataDir, "data")
	return &Paths{
		HomeDir:    home,
		DataDir:    dataDir,
		UploadsDir: resolve(pc.UploadsDir, filepath.Join(dataDir, "uploads")),
		ExportsDir: resolve(pc.ExportsDir, filepath.Join(dataDir, "exports")),
		ReportsDir: resolve(pc.ReportsDir, filepath.Join(dataDir, "reports")),
		LogsDir:    resolve(pc.LogsDir, "logs"),
	}, nil
}

// EnsureDirectories creates all directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.UploadsDir, p.ExportsDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// ExportPath returns a path inside the exports directory
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// ReportPath returns a path inside the reports directory
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// UploadPath returns a path inside the uploads directory
func (p *Paths) UploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// LogPath returns a path inside the logs directory
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
