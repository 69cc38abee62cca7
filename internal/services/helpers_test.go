package services

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/shared/testutil"
)

// MockUploadStore is a mock for the UploadStore interface
type MockUploadStore struct {
	mock.Mock
}

func (m *MockUploadStore) SaveUpload(name string, r io.Reader) (string, error) {
	args := m.Called(name, r)
	return args.String(0), args.Error(1)
}

func (m *MockUploadStore) RemoveFiles(paths []string) error {
	args := m.Called(paths)
	return args.Error(0)
}

// salesCSV renders n standard rows as CSV, leaving out the named columns
func salesCSV(t *testing.T, n int, without ...string) string {
	t.Helper()

	tbl := testutil.NewSalesTable().Generate(n, testutil.StandardRow).Without(without...).Build(t)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	for _, rec := range tbl.Records() {
		require.NoError(t, w.Write(rec))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return sb.String()
}

// writeSalesCSV writes n standard rows to dir/name and returns the path
func writeSalesCSV(t *testing.T, dir, name string, n int, without ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(salesCSV(t, n, without...)), 0644))
	return path
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.GetPaths(config.PathsConfig{HomeDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return paths
}
