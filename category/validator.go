package category

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/fwojciec/cookbook"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Validation limits.
const (
	MaxNameLength       = 50
	MaxMergeSources     = 10
	SimilarityThreshold = 0.6
	MaxAlternatives     = 5
	maxSimilarShown     = 3
)

var (
	validName       = regexp.MustCompile(`^[a-zA-Z0-9\s\-&'().,]+$`)
	innerWhitespace = regexp.MustCompile(`\s+`)
)

var reservedNames = map[string]struct{}{
	"all": {}, "none": {}, "null": {}, "undefined": {}, "uncategorized": {},
	"admin": {}, "system": {}, "default": {}, "temp": {}, "temporary": {},
}

// Result is the outcome of a category validation.
type Result struct {
	Valid                 bool     `json:"isValid"`
	Errors                []string `json:"errors,omitempty"`
	Warnings              []string `json:"warnings,omitempty"`
	SanitizedValue        string   `json:"sanitizedValue,omitempty"`
	SuggestedAlternatives []string `json:"suggestedAlternatives,omitempty"`

	// Conflict is set when the only problem is an existing category name.
	Conflict bool `json:"-"`
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Err converts an invalid result into an application error. Returns nil
// for valid results.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	code := cookbook.EINVALID
	if r.Conflict {
		code = cookbook.ECONFLICT
	}
	return cookbook.Errorf(code, "%s", strings.Join(r.Errors, "; ")).WithSuggestions(r.SuggestedAlternatives...)
}

// Validator checks category names and category operations.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Sanitize trims the name and collapses inner whitespace.
func Sanitize(name string) string {
	return innerWhitespace.ReplaceAllString(strings.TrimSpace(name), " ")
}

// ValidateName checks a new category name against the owner's existing names.
func (v *Validator) ValidateName(name string, existing []string) *Result {
	r := &Result{Valid: true, SanitizedValue: Sanitize(name)}
	v.checkFormat(r, r.SanitizedValue)
	if !r.Valid {
		return r
	}

	if containsFold(existing, r.SanitizedValue) {
		r.fail("Category %q already exists", r.SanitizedValue)
		r.Conflict = true
		r.SuggestedAlternatives = v.Alternatives(r.SanitizedValue, existing)
		return r
	}

	if similar := SimilarNames(r.SanitizedValue, existing); len(similar) > 0 {
		r.warn("Category %q is similar to existing categories: %s", r.SanitizedValue, strings.Join(similar, ", "))
	}
	return r
}

// ValidateRename checks renaming oldName to newName. existing should include
// oldName itself.
func (v *Validator) ValidateRename(oldName, newName string, existing []string) *Result {
	r := &Result{Valid: true, SanitizedValue: Sanitize(newName)}
	if strings.TrimSpace(oldName) == "" {
		r.fail("Current category name is required")
	}
	v.checkFormat(r, r.SanitizedValue)
	if !r.Valid {
		return r
	}
	if r.SanitizedValue == oldName {
		r.fail("New category name must be different from the current name")
		return r
	}

	others := without(existing, oldName)
	if containsFold(others, r.SanitizedValue) {
		r.fail("Category %q already exists", r.SanitizedValue)
		r.Conflict = true
		r.SuggestedAlternatives = []string{
			fmt.Sprintf("Merge %q into %q instead", oldName, r.SanitizedValue),
			fmt.Sprintf("Use %q as name", r.SanitizedValue+" (2)"),
		}
		return r
	}
	if similar := SimilarNames(r.SanitizedValue, others); len(similar) > 0 {
		r.warn("Category %q is similar to existing categories: %s", r.SanitizedValue, strings.Join(similar, ", "))
	}
	return r
}

// ValidateMerge checks merging sources into target. The target may exist.
func (v *Validator) ValidateMerge(sources []string, target string) *Result {
	r := &Result{Valid: true, SanitizedValue: Sanitize(target)}
	switch {
	case len(sources) == 0:
		r.fail("At least one source category is required")
	case len(sources) > MaxMergeSources:
		r.fail("Cannot merge more than %d categories at once", MaxMergeSources)
	}
	for _, s := range sources {
		if strings.TrimSpace(s) == "" {
			r.fail("Source category names cannot be empty")
			break
		}
	}
	v.checkFormat(r, r.SanitizedValue)
	if r.SanitizedValue != "" && containsFold(sources, r.SanitizedValue) {
		r.fail("Target category cannot be the same as a source category")
	}
	return r
}

// ValidateDelete checks deleting name, which holds recipeCount recipes.
func (v *Validator) ValidateDelete(name string, recipeCount int, opts cookbook.DeleteCategoryOptions) *Result {
	r := &Result{Valid: true, SanitizedValue: Sanitize(name)}
	if r.SanitizedValue == "" {
		r.fail("Category name cannot be empty")
		return r
	}
	if recipeCount == 0 {
		return r
	}

	moveTo := Sanitize(opts.MoveTo)
	switch {
	case moveTo != "":
		if strings.EqualFold(moveTo, r.SanitizedValue) {
			r.fail("Cannot move recipes to the same category being deleted")
			break
		}
		target := &Result{Valid: true}
		v.checkFormat(target, moveTo)
		if !target.Valid {
			r.fail("Move target validation failed: %s", strings.Join(target.Errors, "; "))
		}
	case opts.Force:
		r.warn("Force delete will permanently remove %d recipes. This cannot be undone!", recipeCount)
	default:
		r.fail("Category %q contains %d recipes. Either specify a target category to move recipes or enable force delete.", r.SanitizedValue, recipeCount)
	}
	return r
}

func (v *Validator) checkFormat(r *Result, name string) {
	switch {
	case name == "":
		r.fail("Category name cannot be empty")
		return
	case len([]rune(name)) > MaxNameLength:
		r.fail("Category name cannot exceed %d characters", MaxNameLength)
	}
	if !validName.MatchString(name) {
		r.fail("Category name can only contain letters, numbers, spaces, hyphens, ampersands, apostrophes, parentheses, commas, and periods")
	}
	if _, ok := reservedNames[strings.ToLower(name)]; ok {
		r.fail("%q is a reserved category name and cannot be used", name)
	}
}

// Alternatives proposes names derived from base that do not collide with
// existing names.
func (v *Validator) Alternatives(base string, existing []string) []string {
	title := cases.Title(language.English).String(base)
	candidates := []string{
		title + " Recipes",
		"My " + title,
		title + " Collection",
		title + "s",
		"Custom " + title,
	}
	lower := strings.ToLower(base)
	var predefined int
	for _, p := range cookbook.PredefinedCategories {
		if predefined == 3 {
			break
		}
		pl := strings.ToLower(p)
		if pl != lower && (strings.Contains(pl, lower) || strings.Contains(lower, pl)) {
			candidates = append(candidates, p)
			predefined++
		}
	}

	var out []string
	seen := make(map[string]struct{})
	for _, c := range candidates {
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok || containsFold(existing, c) || len([]rune(c)) > MaxNameLength {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == MaxAlternatives {
			break
		}
	}
	return out
}

// Similarity returns 1 minus the edit distance normalized by the longer name,
// ignoring case.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longer := max(len([]rune(a)), len([]rune(b)))
	if longer == 0 {
		return 1
	}
	return float64(longer-levenshtein.ComputeDistance(a, b)) / float64(longer)
}

// SimilarNames returns up to three existing names similar to name, most
// similar first. Exact matches are ignored.
func SimilarNames(name string, existing []string) []string {
	type scored struct {
		name  string
		score float64
	}
	var hits []scored
	for _, e := range existing {
		if strings.EqualFold(e, name) {
			continue
		}
		if s := Similarity(name, e); s > SimilarityThreshold {
			hits = append(hits, scored{e, s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	var out []string
	for _, h := range hits[:min(maxSimilarShown, len(hits))] {
		out = append(out, h.name)
	}
	return out
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
