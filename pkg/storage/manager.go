package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"triviafetch/pkg/logger"
)

const (
	categoriesDirName = "categories"
	metadataDirName   = "metadata"
	tokensDirName     = "tokens"

	questionsFileName  = "questions.json"
	categoriesFileName = "categories.json"
	summaryFileName    = "download_summary.json"
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[-\s]+`)
)

// Manager owns the on-disk layout of one output root:
//
//	categories/<sanitized-name>/questions.json
//	metadata/categories.json
//	metadata/download_summary.json
//	tokens/global_token.json
//
// All files are human-indented UTF-8 JSON written atomically.
type Manager struct {
	baseDir string
	logger  logger.Logger

	// dirNames maps category id to its directory name; populated by
	// SetCategories so sanitization collisions between distinct
	// categories can be disambiguated with an id suffix.
	dirNames map[int]string
}

// NewManager creates a storage manager rooted at baseDir, creating the
// directory layout if needed
func NewManager(baseDir string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	for _, dir := range []string{categoriesDirName, metadataDirName, tokensDirName} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}

	return &Manager{
		baseDir:  baseDir,
		logger:   log,
		dirNames: make(map[int]string),
	}, nil
}

// BaseDir returns the output root
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// TokensDir returns the directory holding the session token file
func (m *Manager) TokensDir() string {
	return filepath.Join(m.baseDir, tokensDirName)
}

// SanitizeCategoryName turns a category name into a filesystem-safe
// directory name: non-word characters stripped, whitespace and dashes
// collapsed to underscores, lower-cased
func SanitizeCategoryName(name string) string {
	sanitized := invalidChars.ReplaceAllString(name, "")
	sanitized = strings.TrimSpace(sanitized)
	sanitized = separators.ReplaceAllString(sanitized, "_")
	return strings.ToLower(sanitized)
}

// SetCategories registers the full category list and assigns each one a
// directory name. Sanitization is many-to-one, so when two distinct
// categories sanitize identically every category after the first gets
// its numeric id appended rather than silently sharing a directory.
func (m *Manager) SetCategories(categories []Category) {
	m.dirNames = make(map[int]string, len(categories))
	taken := make(map[string]int, len(categories))

	for _, cat := range categories {
		name := SanitizeCategoryName(cat.Name)
		if firstID, ok := taken[name]; ok && firstID != cat.ID {
			m.logger.WarnWithFields("category name collision after sanitization", map[string]interface{}{
				"name":         name,
				"first_id":     firstID,
				"colliding_id": cat.ID,
			})
			name = fmt.Sprintf("%s_%d", name, cat.ID)
		} else {
			taken[name] = cat.ID
		}
		m.dirNames[cat.ID] = name
	}
}

// categoryDir returns the directory for a category, registering it on
// the fly when SetCategories has not seen it
func (m *Manager) categoryDir(cat Category) string {
	name, ok := m.dirNames[cat.ID]
	if !ok {
		name = SanitizeCategoryName(cat.Name)
		m.dirNames[cat.ID] = name
	}
	return filepath.Join(m.baseDir, categoriesDirName, name)
}

// DatasetPath returns the questions file path for a category
func (m *Manager) DatasetPath(cat Category) string {
	return filepath.Join(m.categoryDir(cat), questionsFileName)
}

// LoadDataset loads the persisted dataset for a category. A missing file
// returns (nil, nil). A corrupt file is logged and treated as missing so
// the download starts fresh rather than failing.
func (m *Manager) LoadDataset(cat Category) (*CategoryDataset, error) {
	data, err := os.ReadFile(m.DatasetPath(cat))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds CategoryDataset
	if err := json.Unmarshal(data, &ds); err != nil {
		m.logger.WarnWithFields("dataset file is corrupt, starting fresh", map[string]interface{}{
			"category_id": cat.ID,
			"path":        m.DatasetPath(cat),
			"error":       err.Error(),
		})
		return nil, nil
	}

	return &ds, nil
}

// SaveDataset persists a dataset, overwriting the whole file. Statistics
// are recomputed from the question set immediately before writing.
func (m *Manager) SaveDataset(ds *CategoryDataset) error {
	ds.RecomputeStatistics()

	dir := m.categoryDir(Category{ID: ds.CategoryID, Name: ds.CategoryName})
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create category directory: %w", err)
	}

	return m.writeJSON(filepath.Join(dir, questionsFileName), ds)
}

// DeleteDataset removes a category's persisted dataset file. Missing
// files are not an error.
func (m *Manager) DeleteDataset(cat Category) error {
	if err := os.Remove(m.DatasetPath(cat)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return nil
}

// LoadCategories loads the persisted category list. A missing file
// returns (nil, nil); a corrupt file is logged and treated as missing.
func (m *Manager) LoadCategories() ([]Category, error) {
	path := filepath.Join(m.baseDir, metadataDirName, categoriesFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		m.logger.WarnWithFields("categories file is corrupt, starting fresh", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return nil, nil
	}

	return categories, nil
}

// SaveCategories persists the category list
func (m *Manager) SaveCategories(categories []Category) error {
	path := filepath.Join(m.baseDir, metadataDirName, categoriesFileName)
	return m.writeJSON(path, categories)
}

// SaveSummary persists the run summary
func (m *Manager) SaveSummary(summary interface{}) error {
	path := filepath.Join(m.baseDir, metadataDirName, summaryFileName)
	return m.writeJSON(path, summary)
}

// LoadSummary loads the persisted run summary into target. A missing
// file returns os.ErrNotExist.
func (m *Manager) LoadSummary(target interface{}) error {
	path := filepath.Join(m.baseDir, metadataDirName, summaryFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse summary file: %w", err)
	}
	return nil
}

// writeJSON writes human-indented JSON atomically: temp file, sync, rename
func (m *Manager) writeJSON(path string, v interface{}) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}
