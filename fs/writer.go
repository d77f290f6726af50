// Package fs exports recipes as markdown files.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/cookbook"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug converts a title or category name to a file name component.
// Example: "Crème Brûlée (Easy!)" → "creme-brulee-easy"
func Slug(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// RecipePath returns the path of a recipe relative to the export directory.
func RecipePath(r *cookbook.Recipe) string {
	return filepath.Join(Slug(r.Category), Slug(r.Title)+".md")
}

// FormatRecipe formats a recipe as markdown with YAML frontmatter.
func FormatRecipe(r *cookbook.Recipe) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", r.Title)
	fmt.Fprintf(&b, "category: %q\n", r.Category)
	if r.Cuisine != "" {
		fmt.Fprintf(&b, "cuisine: %q\n", r.Cuisine)
	}
	if r.PrepTime != "" {
		fmt.Fprintf(&b, "prep_time: %q\n", r.PrepTime)
	}
	if r.CleanupTime != "" {
		fmt.Fprintf(&b, "cleanup_time: %q\n", r.CleanupTime)
	}
	if r.SourceURL != "" {
		fmt.Fprintf(&b, "source: %s\n", r.SourceURL)
	}
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "saved: %s\n", r.CreatedAt.Format("2006-01-02"))
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}
	if r.Image != nil {
		fmt.Fprintf(&b, "![%s](%s)\n\n", r.Title, *r.Image)
	}

	b.WriteString("## Ingredients\n\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}
	b.WriteString("\n## Instructions\n\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}

// Ensure Writer implements cookbook.RecipeWriter at compile time.
var _ cookbook.RecipeWriter = (*Writer)(nil)

// Writer writes recipes as markdown files grouped by category directory.
// Files whose content is unchanged are left untouched.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteRecipe writes a recipe to disk.
func (w *Writer) WriteRecipe(ctx context.Context, r *cookbook.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, RecipePath(r))
	content := FormatRecipe(r)

	if existing, err := os.ReadFile(fullPath); err == nil && xxhash.Sum64(existing) == xxhash.Sum64String(content) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}
