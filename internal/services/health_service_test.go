package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func TestHealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", testPaths(t), nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.False(t, status.Timestamp.IsZero())
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		paths      func(t *testing.T) *config.Paths
		wantStatus string
	}{
		{"writable storage", testPaths, "ready"},
		{"no paths", func(t *testing.T) *config.Paths { return nil }, "not_ready"},
		{"blocked uploads", func(t *testing.T) *config.Paths {
			p := testPaths(t)
			blocker := filepath.Join(t.TempDir(), "blocker")
			require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
			p.UploadsDir = filepath.Join(blocker, "uploads")
			return p
		}, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("test", tt.paths(t), nil, nil)
			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Contains(t, status.Services, "storage")
			assert.Contains(t, status.Services, "dataset")
		})
	}
}

func TestReadinessReportsDataset(t *testing.T) {
	svc := newTestService(t, nil)
	hs := NewHealthService("test", testPaths(t), svc, nil)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status, "an empty session does not block readiness")
	assert.Equal(t, DatasetHealth{}, status.Services["dataset"])

	path := writeSalesCSV(t, t.TempDir(), "orders.csv", 15)
	session, err := svc.IngestFiles(context.Background(), []string{path})
	require.NoError(t, err)

	ds, ok := hs.ReadinessCheck(context.Background()).Services["dataset"].(DatasetHealth)
	require.True(t, ok)
	assert.True(t, ds.Loaded)
	assert.Equal(t, session.ID, ds.SessionID)
	assert.Equal(t, 15, ds.Rows)
}

func TestLivenessAndVersion(t *testing.T) {
	hs := NewHealthServiceWithBuildInfo("2.0.0", "2024-01-01", "abc123", nil, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, runtime.Version(), live.Runtime["go_version"])

	v := hs.Version()
	assert.Equal(t, "2.0.0", v["version"])
	assert.Equal(t, "2024-01-01", v["build_time"])
	assert.Equal(t, "abc123", v["build_id"])
}

func TestSystemStats(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, os.WriteFile(filepath.Join(paths.UploadsDir, "a.csv"), []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(paths.ExportsDir, "b.xlsx"), []byte("123"), 0644))

	hs := NewHealthService("test", paths, nil, nil)
	stats, err := hs.SystemStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, int64(8), stats.TotalSizeBytes)
	assert.Equal(t, runtime.GOOS, stats.OS)

	detailed := hs.GetDetailedHealth(context.Background())
	assert.Contains(t, detailed, "readiness")
	assert.Contains(t, detailed, "stats")
}
