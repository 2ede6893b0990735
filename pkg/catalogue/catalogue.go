package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"triviafetch/pkg/config"
	"triviafetch/pkg/logger"
)

const catalogueFileName = "catalogue.json"

// Asset is one catalogued media file
type Asset struct {
	Name          string                 `json:"name"`
	Path          string                 `json:"path"`
	Type          string                 `json:"type"`
	Size          int64                  `json:"size"`
	CreatedAt     string                 `json:"created_at"`
	ModifiedAt    string                 `json:"modified_at"`
	Extension     string                 `json:"extension"`
	Metadata      map[string]interface{} `json:"metadata"`
	AIDescription string                 `json:"ai_description,omitempty"`
	AIGeneratedAt string                 `json:"ai_generated_at,omitempty"`
}

// Metadata describes the catalogue file itself
type Metadata struct {
	Version     string `json:"version"`
	CreatedAt   string `json:"created_at"`
	LastUpdated string `json:"last_updated"`
	AssetCount  int    `json:"asset_count"`
}

// Catalogue is the persisted asset catalogue
type Catalogue struct {
	Metadata Metadata `json:"metadata"`
	Assets   []Asset  `json:"assets"`
}

// Stats are aggregate catalogue statistics
type Stats struct {
	TotalAssets int            `json:"total_assets"`
	ByType      map[string]int `json:"by_type"`
	TotalSize   int64          `json:"total_size"`
	LastUpdated string         `json:"last_updated"`
}

// Manager maintains the asset catalogue: scanning the assets directory,
// validating entries, and optionally attaching AI-generated descriptions
type Manager struct {
	cfg       config.CatalogueConfig
	dataDir   string
	assetsDir string
	describer *OllamaClient
	logger    logger.Logger
}

// NewManager creates a catalogue manager from configuration
func NewManager(cfg config.CatalogueConfig, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	for _, dir := range []string{cfg.DataDirectory, cfg.AssetsDirectory} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &Manager{
		cfg:       cfg,
		dataDir:   cfg.DataDirectory,
		assetsDir: cfg.AssetsDirectory,
		describer: NewOllamaClient(cfg.APIHost, cfg.Model, cfg.Temperature, log),
		logger:    log,
	}, nil
}

// cataloguePath returns the catalogue file path
func (m *Manager) cataloguePath() string {
	return filepath.Join(m.dataDir, catalogueFileName)
}

// Load loads the persisted catalogue, or returns a fresh one when no
// usable file exists
func (m *Manager) Load() *Catalogue {
	data, err := os.ReadFile(m.cataloguePath())
	if err == nil {
		var cat Catalogue
		if jsonErr := json.Unmarshal(data, &cat); jsonErr == nil {
			return &cat
		}
		m.logger.Warn("catalogue file is corrupt, starting fresh")
	}

	now := time.Now().Format(time.RFC3339)
	return &Catalogue{
		Metadata: Metadata{
			Version:     "1.0.0",
			CreatedAt:   now,
			LastUpdated: now,
		},
		Assets: []Asset{},
	}
}

// Save persists the catalogue
func (m *Manager) Save(cat *Catalogue) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalogue: %w", err)
	}
	if err := os.WriteFile(m.cataloguePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}
	return nil
}

// ScanAssets walks the assets directory and builds an entry for every
// file with a supported extension
func (m *Manager) ScanAssets() ([]Asset, error) {
	m.logger.WithField("dir", m.assetsDir).Info("scanning assets directory")

	supported := make(map[string]struct{}, len(m.cfg.SupportedExtensions))
	for _, ext := range m.cfg.SupportedExtensions {
		supported[strings.ToLower(ext)] = struct{}{}
	}

	var assets []Asset
	err := filepath.WalkDir(m.assetsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := supported[ext]; !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			m.logger.WithError(err).WithField("path", path).Warn("failed to stat asset, skipping")
			return nil
		}

		rel, err := filepath.Rel(m.assetsDir, path)
		if err != nil {
			rel = path
		}

		assetType := AssetType(ext)
		asset := Asset{
			Name:       d.Name(),
			Path:       rel,
			Type:       assetType,
			Size:       info.Size(),
			CreatedAt:  info.ModTime().Format(time.RFC3339),
			ModifiedAt: info.ModTime().Format(time.RFC3339),
			Extension:  ext,
			Metadata:   analyzeAsset(assetType),
		}
		assets = append(assets, asset)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan assets: %w", err)
	}

	m.logger.WithField("count", len(assets)).Info("asset scan complete")
	return assets, nil
}

// AssetType classifies a file extension into image, audio, video or unknown
func AssetType(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
		return "image"
	case ".mp3", ".wav", ".flac", ".aac", ".ogg":
		return "audio"
	case ".mp4", ".mov", ".avi", ".mkv", ".webm":
		return "video"
	default:
		return "unknown"
	}
}

// analyzeAsset records basic analysis metadata. Content analysis proper
// (dimensions, codecs, durations) is out of scope and stubbed.
func analyzeAsset(assetType string) map[string]interface{} {
	if assetType == "unknown" {
		return map[string]interface{}{}
	}
	return map[string]interface{}{
		"analyzed_at":   time.Now().Format(time.RFC3339),
		"analysis_type": "basic",
	}
}

// GenerateDescriptions attaches an AI description to every asset of a
// known type. Failures are soft: the catalogue is useful without them.
func (m *Manager) GenerateDescriptions(ctx context.Context, assets []Asset) {
	if !m.describer.Available(ctx) {
		m.logger.Warn("description service not reachable, skipping AI descriptions")
		return
	}

	for i := range assets {
		if assets[i].Type == "unknown" {
			continue
		}

		description, err := m.describer.Describe(ctx, assets[i].Type, assets[i].Name)
		if err != nil {
			m.logger.WithError(err).WithField("asset", assets[i].Name).
				Debug("failed to generate description")
			continue
		}

		assets[i].AIDescription = description
		assets[i].AIGeneratedAt = time.Now().Format(time.RFC3339)
	}
}

// Validate checks that every asset carries the configured required
// fields. In strict mode any invalid asset fails validation; otherwise
// problems are logged and validation passes.
func (m *Manager) Validate(cat *Catalogue) bool {
	if cat == nil {
		m.logger.Error("catalogue is nil")
		return false
	}

	invalid := 0
	for i, asset := range cat.Assets {
		missing := m.missingFields(asset)
		if len(missing) > 0 {
			invalid++
			m.logger.ErrorWithFields("asset missing required fields", map[string]interface{}{
				"index":   i,
				"name":    asset.Name,
				"missing": missing,
			})
		}
	}

	if invalid > 0 {
		m.logger.WithField("invalid_assets", invalid).Error("catalogue validation found problems")
		if m.cfg.StrictMode {
			return false
		}
	}

	m.logger.Info("catalogue validation completed")
	return true
}

// missingFields returns the required fields an asset lacks
func (m *Manager) missingFields(asset Asset) []string {
	var missing []string
	for _, field := range m.cfg.RequiredFields {
		var present bool
		switch field {
		case "name":
			present = asset.Name != ""
		case "type":
			present = asset.Type != ""
		case "path":
			present = asset.Path != ""
		case "created_at":
			present = asset.CreatedAt != ""
		default:
			_, present = asset.Metadata[field]
		}
		if !present {
			missing = append(missing, field)
		}
	}
	return missing
}

// Refresh rescans the assets directory and rewrites the catalogue. The
// catalogue is only saved when the refreshed data validates.
func (m *Manager) Refresh(ctx context.Context) error {
	cat := m.Load()

	assets, err := m.ScanAssets()
	if err != nil {
		return err
	}

	if m.cfg.DescriptionsEnabled {
		m.GenerateDescriptions(ctx, assets)
	}

	cat.Assets = assets
	cat.Metadata.LastUpdated = time.Now().Format(time.RFC3339)
	cat.Metadata.AssetCount = len(assets)

	if !m.Validate(cat) {
		return fmt.Errorf("catalogue validation failed, not saving")
	}

	if err := m.Save(cat); err != nil {
		return err
	}

	m.logger.WithField("assets", len(assets)).Info("catalogue refreshed")
	return nil
}

// GetStats computes aggregate statistics over the persisted catalogue
func (m *Manager) GetStats() Stats {
	cat := m.Load()

	stats := Stats{
		TotalAssets: len(cat.Assets),
		ByType:      make(map[string]int),
		LastUpdated: cat.Metadata.LastUpdated,
	}
	for _, asset := range cat.Assets {
		stats.ByType[asset.Type]++
		stats.TotalSize += asset.Size
	}
	return stats
}
