package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/cookbook"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ cookbook.CategoryService = (*CategoryService)(nil)

// queryer is satisfied by both *DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CategoryService implements cookbook.CategoryService using SQLite.
// Category names are unique per owner ignoring case.
type CategoryService struct {
	db *DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *DB) *CategoryService {
	return &CategoryService{db: db}
}

// FindCategories returns the owner's categories with recipe counts, ordered by name.
func (s *CategoryService) FindCategories(ctx context.Context, ownerID string) ([]*cookbook.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.owner_id, c.name, c.source, COUNT(r.id), c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN recipes r ON r.category_id = c.id
		WHERE c.owner_id = ?
		GROUP BY c.id
		ORDER BY c.name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*cookbook.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// FindCategoryByName retrieves a category by name, ignoring case.
func (s *CategoryService) FindCategoryByName(ctx context.Context, ownerID, name string) (*cookbook.Category, error) {
	return findCategory(ctx, s.db, ownerID, name)
}

// RenameCategory renames a category and restamps its recipes as user-chosen.
func (s *CategoryService) RenameCategory(ctx context.Context, ownerID, oldName, newName string) (*cookbook.CategoryChange, error) {
	change := &cookbook.CategoryChange{Action: cookbook.CategoryActionRenamed, Target: newName}

	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		old, err := findCategory(ctx, tx, ownerID, oldName)
		if err != nil {
			return err
		}

		existing, err := findCategory(ctx, tx, ownerID, newName)
		if err != nil && cookbook.ErrorCode(err) != cookbook.ENOTFOUND {
			return err
		}
		if existing != nil && existing.ID != old.ID {
			return cookbook.Errorf(cookbook.ECONFLICT, "Category %q already exists", existing.Name).
				WithSuggestions(`Merge "` + old.Name + `" into "` + existing.Name + `" instead`)
		}

		now := formatTime(time.Now())
		if _, err := tx.ExecContext(ctx, `
			UPDATE categories SET name = ?, source = ?, updated_at = ? WHERE id = ?
		`, newName, string(cookbook.CategorySourceUserCreated), now, old.ID); err != nil {
			return err
		}

		n, err := restampRecipes(ctx, tx, old.ID, old.ID, now)
		if err != nil {
			return err
		}
		change.AffectedRecipes = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// MergeCategories moves every recipe of the sources into target and removes
// the sources. Target is created when it does not exist.
func (s *CategoryService) MergeCategories(ctx context.Context, ownerID string, sources []string, target string) (*cookbook.CategoryChange, error) {
	change := &cookbook.CategoryChange{Action: cookbook.CategoryActionMerged, Target: target}

	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		ids := make([]string, 0, len(sources))
		for _, name := range sources {
			c, err := findCategory(ctx, tx, ownerID, name)
			if err != nil {
				if cookbook.ErrorCode(err) == cookbook.ENOTFOUND {
					return cookbook.Errorf(cookbook.ENOTFOUND, "Source category %q not found", name)
				}
				return err
			}
			ids = append(ids, c.ID)
		}

		targetID, err := ensureCategory(ctx, tx, ownerID, target, cookbook.CategorySourceUserCreated)
		if err != nil {
			return err
		}

		now := formatTime(time.Now())
		for _, id := range ids {
			if id == targetID {
				continue
			}
			n, err := restampRecipes(ctx, tx, id, targetID, now)
			if err != nil {
				return err
			}
			change.AffectedRecipes += n
			if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// DeleteCategory removes a category. Its recipes move to opts.MoveTo or,
// with opts.Force, are deleted. A non-empty category with neither option
// is rejected.
func (s *CategoryService) DeleteCategory(ctx context.Context, ownerID, name string, opts cookbook.DeleteCategoryOptions) (*cookbook.CategoryChange, error) {
	change := &cookbook.CategoryChange{}

	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		c, err := findCategory(ctx, tx, ownerID, name)
		if err != nil {
			return err
		}

		switch {
		case c.RecipeCount == 0:
			change.Action = cookbook.CategoryActionEmptyCategoryRemoved
		case opts.MoveTo != "":
			targetID, err := ensureCategory(ctx, tx, ownerID, opts.MoveTo, cookbook.CategorySourceUserCreated)
			if err != nil {
				return err
			}
			if targetID == c.ID {
				return cookbook.Errorf(cookbook.EINVALID, "Cannot move recipes to the category being deleted")
			}
			n, err := restampRecipes(ctx, tx, c.ID, targetID, formatTime(time.Now()))
			if err != nil {
				return err
			}
			change.Action = cookbook.CategoryActionDeleteWithMigration
			change.AffectedRecipes = n
			change.Target = opts.MoveTo
		case opts.Force:
			res, err := tx.ExecContext(ctx, "DELETE FROM recipes WHERE category_id = ?", c.ID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			change.Action = cookbook.CategoryActionForceDelete
			change.AffectedRecipes = int(n)
		default:
			return cookbook.Errorf(cookbook.EINVALID, "Category %q contains %d recipes", c.Name, c.RecipeCount)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// findCategory looks a category up by name, ignoring case.
func findCategory(ctx context.Context, q queryer, ownerID, name string) (*cookbook.Category, error) {
	row := q.QueryRowContext(ctx, `
		SELECT c.id, c.owner_id, c.name, c.source,
			(SELECT COUNT(*) FROM recipes r WHERE r.category_id = c.id),
			c.created_at, c.updated_at
		FROM categories c
		WHERE c.owner_id = ? AND c.name = ?
	`, ownerID, name)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "Category %q not found", name)
	}
	return c, err
}

// ensureCategory returns the ID of the named category, creating it with
// source when it does not exist.
func ensureCategory(ctx context.Context, q queryer, ownerID, name string, source cookbook.CategorySource) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM categories WHERE owner_id = ? AND name = ?
	`, ownerID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	if cookbook.IsPredefinedCategory(name) {
		source = cookbook.CategorySourcePredefined
	}
	id = uuid.New().String()
	now := formatTime(time.Now())
	_, err = q.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, ownerID, name, string(source), now, now)
	return id, err
}

// pruneCategory removes a category that no recipe references any more.
func pruneCategory(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM categories
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM recipes WHERE category_id = ?)
	`, id, id)
	return err
}

// restampRecipes moves recipes from one category to another and marks the
// assignment as user-chosen. Returns the number of recipes touched.
func restampRecipes(ctx context.Context, tx *sql.Tx, fromID, toID, now string) (int, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE recipes
		SET category_id = ?, category_source = ?, category_confidence = 1.0, updated_at = ?
		WHERE category_id = ?
	`, toID, string(cookbook.CategorySourceUserCreated), now, fromID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (*cookbook.Category, error) {
	var c cookbook.Category
	var source, createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &source, &c.RecipeCount, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Source = cookbook.CategorySource(source)

	var err error
	if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &c, nil
}
