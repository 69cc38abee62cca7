package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"salespulse/internal/validation"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds loadable sales files
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// resolve against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindDataFiles lists the CSV and XLSX files directly inside dir, sorted by
// name. Excel lock files are skipped.
func (d *Discovery) FindDataFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !validation.IsSupported(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ResolveInputs expands every directory in paths to its data files and keeps
// plain files as given. Order follows paths; duplicates are dropped.
func (d *Discovery) ResolveInputs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		full := d.resolve(p)
		info, err := os.Stat(full)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", full, err)
		}
		if !info.IsDir() {
			add(full)
			continue
		}
		found, err := d.FindDataFiles(full)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f.Path)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no .csv or .xlsx files found in %v", paths)
	}
	return out, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
