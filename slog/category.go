package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/cookbook"
)

// Ensure LoggingCategoryManager implements cookbook.CategoryManager.
var _ cookbook.CategoryManager = (*LoggingCategoryManager)(nil)

// LoggingCategoryManager wraps a CategoryManager and logs every mutation.
// Reads are delegated without logging.
type LoggingCategoryManager struct {
	next   cookbook.CategoryManager
	logger *slog.Logger
}

// NewLoggingCategoryManager creates a new LoggingCategoryManager.
func NewLoggingCategoryManager(next cookbook.CategoryManager, logger *slog.Logger) *LoggingCategoryManager {
	return &LoggingCategoryManager{next: next, logger: logger}
}

// ListCategories delegates to the wrapped manager.
func (m *LoggingCategoryManager) ListCategories(ctx context.Context, ownerID string) ([]*cookbook.Category, error) {
	return m.next.ListCategories(ctx, ownerID)
}

// RenameCategory logs the rename and delegates to the wrapped manager.
func (m *LoggingCategoryManager) RenameCategory(ctx context.Context, ownerID, oldName, newName string) (change *cookbook.CategoryChange, err error) {
	defer func(begin time.Time) {
		m.log("rename category", change, err,
			"owner", ownerID,
			"from", oldName,
			"to", newName,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return m.next.RenameCategory(ctx, ownerID, oldName, newName)
}

// MergeCategories logs the merge and delegates to the wrapped manager.
func (m *LoggingCategoryManager) MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (change *cookbook.CategoryChange, err error) {
	defer func(begin time.Time) {
		m.log("merge categories", change, err,
			"owner", ownerID,
			"sources", sources,
			"to", target,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return m.next.MergeCategories(ctx, ownerID, sources, target)
}

// DeleteCategory logs the deletion and delegates to the wrapped manager.
func (m *LoggingCategoryManager) DeleteCategory(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (change *cookbook.CategoryChange, err error) {
	defer func(begin time.Time) {
		m.log("delete category", change, err,
			"owner", ownerID,
			"name", name,
			"move_to", opts.MoveTo,
			"force", opts.Force,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return m.next.DeleteCategory(ctx, ownerID, name, opts)
}

// SuggestCategories delegates to the wrapped manager.
func (m *LoggingCategoryManager) SuggestCategories(ctx context.Context, ownerID string, content cookbook.RecipeContent, opts cookbook.SuggestOptions) ([]cookbook.Suggestion, error) {
	return m.next.SuggestCategories(ctx, ownerID, content, opts)
}

func (m *LoggingCategoryManager) log(msg string, change *cookbook.CategoryChange, err error, attrs ...any) {
	if change != nil {
		attrs = append(attrs, "affected", change.AffectedRecipes, "action", change.Action)
	}
	if err != nil {
		m.logger.Warn(msg, append(attrs, "err", err)...)
		return
	}
	m.logger.Info(msg, attrs...)
}
