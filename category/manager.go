package category

import (
	"context"
	"sort"
	"strings"

	"github.com/fwojciec/cookbook"
)

// Ensure Manager implements cookbook.CategoryManager.
var _ cookbook.CategoryManager = (*Manager)(nil)

// Manager validates category operations before applying them to storage.
type Manager struct {
	store     cookbook.CategoryService
	validator *Validator
	suggester cookbook.Suggester
}

// NewManager creates a new Manager.
func NewManager(store cookbook.CategoryService, validator *Validator, suggester cookbook.Suggester) *Manager {
	return &Manager{
		store:     store,
		validator: validator,
		suggester: suggester,
	}
}

// ListCategories returns the owner's categories merged with the predefined
// list, sorted by recipe count descending then name.
func (m *Manager) ListCategories(ctx context.Context, ownerID string) ([]*cookbook.Category, error) {
	cats, err := m.store.FindCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(cats))
	out := make([]*cookbook.Category, 0, len(cats)+len(cookbook.PredefinedCategories))
	for _, c := range cats {
		c.IsPredefined = cookbook.IsPredefinedCategory(c.Name)
		seen[strings.ToLower(c.Name)] = struct{}{}
		out = append(out, c)
	}
	for _, name := range cookbook.PredefinedCategories {
		if _, ok := seen[strings.ToLower(name)]; ok {
			continue
		}
		out = append(out, &cookbook.Category{
			Name:         name,
			Source:       cookbook.CategorySourcePredefined,
			IsPredefined: true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecipeCount != out[j].RecipeCount {
			return out[i].RecipeCount > out[j].RecipeCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// RenameCategory validates and renames a category.
func (m *Manager) RenameCategory(ctx context.Context, ownerID, oldName, newName string) (*cookbook.CategoryChange, error) {
	cats, err := m.store.FindCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	old := find(cats, oldName)
	if old == nil {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "Category %q not found", oldName)
	}

	res := m.validator.ValidateRename(old.Name, newName, names(cats))
	if err := res.Err(); err != nil {
		return nil, err
	}

	change, err := m.store.RenameCategory(ctx, ownerID, old.Name, res.SanitizedValue)
	if err != nil {
		return nil, err
	}
	change.Warnings = append(change.Warnings, res.Warnings...)
	return change, nil
}

// MergeCategories validates and merges sources into target. The target
// keeps the spelling of an existing category when one matches.
func (m *Manager) MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (*cookbook.CategoryChange, error) {
	res := m.validator.ValidateMerge(sources, target)
	if err := res.Err(); err != nil {
		return nil, err
	}

	cats, err := m.store.FindCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var resolved []string
	var total int
	seen := make(map[string]struct{})
	for _, s := range sources {
		c := find(cats, s)
		if c == nil {
			return nil, cookbook.Errorf(cookbook.ENOTFOUND, "Source category %q not found", s)
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		resolved = append(resolved, c.Name)
		total += c.RecipeCount
	}
	if total == 0 {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "Source categories contain no recipes to merge")
	}

	targetName := res.SanitizedValue
	if t := find(cats, targetName); t != nil {
		targetName = t.Name
	}
	change, err := m.store.MergeCategories(ctx, ownerID, resolved, targetName)
	if err != nil {
		return nil, err
	}
	change.Warnings = append(change.Warnings, res.Warnings...)
	return change, nil
}

// DeleteCategory validates and deletes a category. An empty category is
// removed without further options.
func (m *Manager) DeleteCategory(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
	cats, err := m.store.FindCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	c := find(cats, name)
	if c == nil {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "Category %q not found", name)
	}

	res := m.validator.ValidateDelete(c.Name, c.RecipeCount, opts)
	if err := res.Err(); err != nil {
		return nil, err
	}

	if c.RecipeCount == 0 {
		opts = cookbook.DeleteCategoryOptions{}
	} else if opts.MoveTo = Sanitize(opts.MoveTo); opts.MoveTo != "" {
		opts.Force = false
		if t := find(cats, opts.MoveTo); t != nil {
			opts.MoveTo = t.Name
		}
	}

	change, err := m.store.DeleteCategory(ctx, ownerID, c.Name, opts)
	if err != nil {
		return nil, err
	}
	change.Warnings = append(change.Warnings, res.Warnings...)
	return change, nil
}

// SuggestCategories suggests categories for content. When ownerID is set the
// owner's category names feed the similarity heuristic.
func (m *Manager) SuggestCategories(ctx context.Context, ownerID string, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
	if ownerID != "" && opts.UserCategories == nil {
		cats, err := m.store.FindCategories(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		opts.UserCategories = names(cats)
	}
	return m.suggester.Suggest(ctx, content, opts)
}

func find(cats []*cookbook.Category, name string) *cookbook.Category {
	name = strings.TrimSpace(name)
	for _, c := range cats {
		if c.Name == name {
			return c
		}
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func names(cats []*cookbook.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.Name
	}
	return out
}
