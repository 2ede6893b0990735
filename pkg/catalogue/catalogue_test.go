package catalogue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviafetch/pkg/config"
	"triviafetch/pkg/logger"
)

func testConfig(t *testing.T) config.CatalogueConfig {
	t.Helper()
	cfg := config.DefaultConfig().Catalogue
	cfg.DataDirectory = t.TempDir()
	cfg.AssetsDirectory = t.TempDir()
	return cfg
}

func writeAsset(t *testing.T, dir, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644))
}

func TestAssetType(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{".jpg", "image"},
		{".PNG", "image"},
		{".mp3", "audio"},
		{".wav", "audio"},
		{".mp4", "video"},
		{".mov", "video"},
		{".txt", "unknown"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, AssetType(test.ext), "extension %q", test.ext)
	}
}

func TestScanAssets(t *testing.T) {
	cfg := testConfig(t)
	writeAsset(t, cfg.AssetsDirectory, "cover.jpg", 100)
	writeAsset(t, cfg.AssetsDirectory, "theme.mp3", 200)
	writeAsset(t, cfg.AssetsDirectory, "notes.txt", 50) // unsupported

	sub := filepath.Join(cfg.AssetsDirectory, "clips")
	require.NoError(t, os.MkdirAll(sub, 0755))
	writeAsset(t, sub, "intro.mp4", 300)

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	assets, err := mgr.ScanAssets()
	require.NoError(t, err)
	require.Len(t, assets, 3, "unsupported extensions are skipped")

	byName := make(map[string]Asset, len(assets))
	for _, a := range assets {
		byName[a.Name] = a
	}

	assert.Equal(t, "image", byName["cover.jpg"].Type)
	assert.Equal(t, int64(100), byName["cover.jpg"].Size)
	assert.Equal(t, "audio", byName["theme.mp3"].Type)
	assert.Equal(t, "video", byName["intro.mp4"].Type)
	assert.Equal(t, filepath.Join("clips", "intro.mp4"), byName["intro.mp4"].Path)
	assert.NotEmpty(t, byName["cover.jpg"].CreatedAt)
}

func TestRefreshPersistsCatalogue(t *testing.T) {
	cfg := testConfig(t)
	writeAsset(t, cfg.AssetsDirectory, "cover.jpg", 100)

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, mgr.Refresh(context.Background()))
	assert.FileExists(t, filepath.Join(cfg.DataDirectory, "catalogue.json"))

	cat := mgr.Load()
	require.Len(t, cat.Assets, 1)
	assert.Equal(t, 1, cat.Metadata.AssetCount)
	assert.NotEmpty(t, cat.Metadata.LastUpdated)
}

func TestLoadCorruptCatalogueStartsFresh(t *testing.T) {
	cfg := testConfig(t)
	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDirectory, "catalogue.json"), []byte("{broken"), 0644))

	cat := mgr.Load()
	require.NotNil(t, cat)
	assert.Empty(t, cat.Assets)
	assert.Equal(t, "1.0.0", cat.Metadata.Version)
}

func TestValidateStrictMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.StrictMode = true

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	valid := &Catalogue{Assets: []Asset{
		{Name: "cover.jpg", Type: "image", Path: "cover.jpg", CreatedAt: "2026-01-01T00:00:00Z"},
	}}
	assert.True(t, mgr.Validate(valid))

	invalid := &Catalogue{Assets: []Asset{
		{Name: "cover.jpg", Type: "image"}, // missing path and created_at
	}}
	assert.False(t, mgr.Validate(invalid))
}

func TestValidateLenientMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.StrictMode = false

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	invalid := &Catalogue{Assets: []Asset{{Name: "cover.jpg"}}}
	assert.True(t, mgr.Validate(invalid), "problems are logged but tolerated outside strict mode")
}

func TestGetStats(t *testing.T) {
	cfg := testConfig(t)
	writeAsset(t, cfg.AssetsDirectory, "a.jpg", 100)
	writeAsset(t, cfg.AssetsDirectory, "b.jpg", 150)
	writeAsset(t, cfg.AssetsDirectory, "c.mp3", 200)

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, mgr.Refresh(context.Background()))

	stats := mgr.GetStats()
	assert.Equal(t, 3, stats.TotalAssets)
	assert.Equal(t, int64(450), stats.TotalSize)
	assert.Equal(t, 2, stats.ByType["image"])
	assert.Equal(t, 1, stats.ByType["audio"])
}

func TestGenerateDescriptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			w.Write([]byte(`{"response":" A colourful album cover. "}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t)
	cfg.APIHost = server.URL
	cfg.DescriptionsEnabled = true

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	assets := []Asset{
		{Name: "cover.jpg", Type: "image"},
		{Name: "mystery.bin", Type: "unknown"},
	}
	mgr.GenerateDescriptions(context.Background(), assets)

	assert.Equal(t, "A colourful album cover.", assets[0].AIDescription)
	assert.NotEmpty(t, assets[0].AIGeneratedAt)
	assert.Empty(t, assets[1].AIDescription, "unknown types are never described")
}

func TestGenerateDescriptionsServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // unreachable from here on

	cfg := testConfig(t)
	cfg.APIHost = server.URL

	mgr, err := NewManager(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	assets := []Asset{{Name: "cover.jpg", Type: "image"}}
	mgr.GenerateDescriptions(context.Background(), assets)
	assert.Empty(t, assets[0].AIDescription, "unreachable service is a soft failure")
}

func TestOllamaAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(server.Close)

	client := NewOllamaClient(server.URL, "llama2", 0.7, logger.NewTestLogger())
	assert.True(t, client.Available(context.Background()))
}

func TestBuildPrompt(t *testing.T) {
	assert.Contains(t, buildPrompt("image", "cover.jpg"), "image file")
	assert.Contains(t, buildPrompt("audio", "theme.mp3"), "audio file")
	assert.Contains(t, buildPrompt("video", "intro.mp4"), "video file")
	assert.Contains(t, buildPrompt("unknown", "blob.bin"), "media file")
}
