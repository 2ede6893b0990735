package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triviafetch/pkg/logger"
	"triviafetch/pkg/opentdb"
)

func newTestStorageManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)
	return mgr
}

func TestNewManagerCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	_, err := NewManager(dir, logger.NewTestLogger())
	require.NoError(t, err)

	for _, sub := range []string{"categories", "metadata", "tokens"} {
		assert.DirExists(t, filepath.Join(dir, sub))
	}
}

func TestSanitizeCategoryName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"General Knowledge", "general_knowledge"},
		{"Entertainment: Books", "entertainment_books"},
		{"Science & Nature", "science_nature"},
		{"Entertainment: Japanese Anime & Manga", "entertainment_japanese_anime_manga"},
		{"Science: Computers", "science_computers"},
		{"Mythology", "mythology"},
		{"  padded  ", "padded"},
		{"dash-separated name", "dash_separated_name"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, SanitizeCategoryName(test.input), "input %q", test.input)
	}
}

func TestSetCategoriesResolvesCollisions(t *testing.T) {
	mgr := newTestStorageManager(t)
	mgr.SetCategories([]Category{
		{ID: 10, Name: "Science: Computers"},
		{ID: 11, Name: "Science & Computers"}, // sanitizes identically
		{ID: 12, Name: "Mythology"},
	})

	first := mgr.DatasetPath(Category{ID: 10, Name: "Science: Computers"})
	second := mgr.DatasetPath(Category{ID: 11, Name: "Science & Computers"})

	assert.NotEqual(t, first, second)
	assert.True(t, strings.Contains(second, "science_computers_11"))
}

func TestSaveAndLoadDataset(t *testing.T) {
	mgr := newTestStorageManager(t)
	cat := Category{ID: 9, Name: "General Knowledge"}

	ds := NewCategoryDataset(cat)
	ds.Questions = []opentdb.Question{question("q1", "easy", "multiple")}
	// Stale on purpose: save must recompute before writing
	ds.Statistics.TotalQuestions = 99

	require.NoError(t, mgr.SaveDataset(ds))

	loaded, err := mgr.LoadDataset(cat)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 9, loaded.CategoryID)
	assert.Equal(t, 1, loaded.Statistics.TotalQuestions)
	assert.Equal(t, "q1", loaded.Questions[0].Question)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	mgr := newTestStorageManager(t)

	ds, err := mgr.LoadDataset(Category{ID: 9, Name: "General Knowledge"})
	require.NoError(t, err)
	assert.Nil(t, ds)
}

func TestLoadDatasetCorruptFile(t *testing.T) {
	mgr := newTestStorageManager(t)
	cat := Category{ID: 9, Name: "General Knowledge"}

	path := mgr.DatasetPath(cat)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))

	ds, err := mgr.LoadDataset(cat)
	require.NoError(t, err, "corrupt files are treated as missing")
	assert.Nil(t, ds)
}

func TestDeleteDataset(t *testing.T) {
	mgr := newTestStorageManager(t)
	cat := Category{ID: 9, Name: "General Knowledge"}

	ds := NewCategoryDataset(cat)
	require.NoError(t, mgr.SaveDataset(ds))
	require.FileExists(t, mgr.DatasetPath(cat))

	require.NoError(t, mgr.DeleteDataset(cat))
	assert.NoFileExists(t, mgr.DatasetPath(cat))

	// Deleting again is not an error
	require.NoError(t, mgr.DeleteDataset(cat))
}

func TestSaveAndLoadCategories(t *testing.T) {
	mgr := newTestStorageManager(t)
	categories := []Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 10, Name: "Entertainment: Books"},
	}

	require.NoError(t, mgr.SaveCategories(categories))

	loaded, err := mgr.LoadCategories()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Entertainment: Books", loaded[1].Name)
}

func TestLoadCategoriesMissingFile(t *testing.T) {
	mgr := newTestStorageManager(t)

	loaded, err := mgr.LoadCategories()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestWrittenJSONIsIndentedAndUnescaped(t *testing.T) {
	mgr := newTestStorageManager(t)
	cat := Category{ID: 9, Name: "General Knowledge"}

	ds := NewCategoryDataset(cat)
	ds.Questions = []opentdb.Question{question("Is 1 < 2 & 3 > 2?", "easy", "boolean")}
	require.NoError(t, mgr.SaveDataset(ds))

	data, err := os.ReadFile(mgr.DatasetPath(cat))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "\n  \"category_id\"", "output is indented")
	assert.Contains(t, content, "Is 1 < 2 & 3 > 2?", "angle brackets survive unescaped")
	assert.NotContains(t, content, `\u003c`)
}
