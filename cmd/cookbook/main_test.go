package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/cookbook"
	main "github.com/fwojciec/cookbook/cmd/cookbook"
	"github.com/fwojciec/cookbook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// draftExtractor returns an extractor that yields a complete draft titled
// after the URL path.
func draftExtractor(category string) *mock.RecipeExtractor {
	return &mock.RecipeExtractor{
		ExtractFn: func(_ context.Context, pageURL string, _ cookbook.ExtractOptions) (*cookbook.Extraction, error) {
			return &cookbook.Extraction{
				Draft: &cookbook.RecipeDraft{
					Title:       filepath.Base(pageURL),
					Ingredients: []string{"1 cup rice"},
					Steps:       []string{"Cook the rice."},
					Category:    category,
				},
				Strategy:           cookbook.StrategyURLDirect,
				CategoryConfidence: 0.9,
			}, nil
		},
	}
}

func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")
	return m
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help shows all commands", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := newTestMain(t).Run(context.Background(), []string{"--help"}, stdout, stderr)

		require.NoError(t, err)
		for _, cmd := range []string{"serve", "extract", "import", "export", "categories"} {
			assert.Contains(t, stdout.String(), cmd)
		}
		assert.Contains(t, stdout.String(), "Usage:")
	})

	t.Run("no arguments is an error", func(t *testing.T) {
		t.Parallel()

		err := newTestMain(t).Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("unknown command is an error", func(t *testing.T) {
		t.Parallel()

		err := newTestMain(t).Run(context.Background(), []string{"bake"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})

	t.Run("import then list categories then export", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Extractor = draftExtractor("Rice Dishes")
		ctx := context.Background()

		stdout := &bytes.Buffer{}
		err := m.Run(ctx, []string{"import", "--user", "u1",
			"https://example.com/fried-rice", "https://example.com/risotto"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Imported 2 of 2 recipes")

		m2 := main.NewMain()
		m2.DBPath = m.DBPath
		stdout.Reset()
		err = m2.Run(ctx, []string{"categories", "--user", "u1"}, stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Regexp(t, `Rice Dishes\s+2`, stdout.String())

		dir := t.TempDir()
		m3 := main.NewMain()
		m3.DBPath = m.DBPath
		stdout.Reset()
		err = m3.Run(ctx, []string{"export", "--user", "u1", "--dir", dir}, stdout, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Exported 2 recipes")
		_, err = os.Stat(filepath.Join(dir, "rice-dishes", "risotto.md"))
		assert.NoError(t, err)
	})

	t.Run("importing the same URL twice skips it", func(t *testing.T) {
		t.Parallel()

		m := newTestMain(t)
		m.Extractor = draftExtractor("Soups")
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"import", "-u", "u1",
			"https://example.com/pho", "https://example.com/pho"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Imported 1 of 2 recipes (1 skipped, 0 failed)")
	})

	t.Run("database path from flag", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "flag.db")
		m := newTestMain(t)

		err := m.Run(context.Background(), []string{"--db", dbPath, "categories", "-u", "u1"}, &bytes.Buffer{}, &bytes.Buffer{})

		require.NoError(t, err)
		_, err = os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("invalid database path", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = "/nonexistent/dir/test.db"
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"categories", "-u", "u1"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "COOKBOOK_DB")
	})
}
