package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/cookbook"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ cookbook.RecipeService = (*RecipeService)(nil)

// RecipeService implements cookbook.RecipeService using SQLite.
type RecipeService struct {
	db *DB
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(db *DB) *RecipeService {
	return &RecipeService{db: db}
}

const recipeColumns = `
	r.id, r.owner_id, r.title, r.description, r.ingredients, r.steps, r.image,
	r.cuisine, c.name, r.category_source, r.category_confidence, r.prep_time,
	r.cleanup_time, r.source_url, r.created_at, r.updated_at`

// CreateRecipe creates a new recipe, creating its category if needed.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *cookbook.Recipe) error {
	recipe.Normalize()
	if err := recipe.Validate(); err != nil {
		return err
	}

	ingredients, err := encodeList(recipe.Ingredients)
	if err != nil {
		return err
	}
	steps, err := encodeList(recipe.Steps)
	if err != nil {
		return err
	}

	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkTitle(ctx, tx, recipe.OwnerID, recipe.Title, ""); err != nil {
			return err
		}

		categoryID, err := ensureCategory(ctx, tx, recipe.OwnerID, recipe.Category, recipe.CategorySource)
		if err != nil {
			return err
		}

		recipe.ID = uuid.New().String()
		now := time.Now().UTC()
		recipe.CreatedAt = now
		recipe.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipes (id, owner_id, title, description, ingredients, steps, image, cuisine,
				category_id, category_source, category_confidence, prep_time, cleanup_time, source_url,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, recipe.ID, recipe.OwnerID, recipe.Title, recipe.Description, ingredients, steps, nullString(recipe.Image),
			recipe.Cuisine, categoryID, string(recipe.CategorySource), recipe.CategoryConfidence, recipe.PrepTime,
			recipe.CleanupTime, recipe.SourceURL, formatTime(now), formatTime(now))
		return err
	})
}

// FindRecipeByID retrieves a recipe by ID.
func (s *RecipeService) FindRecipeByID(ctx context.Context, id string) (*cookbook.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recipeColumns+`
		FROM recipes r
		JOIN categories c ON c.id = r.category_id
		WHERE r.id = ?
	`, id)

	recipe, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, cookbook.Errorf(cookbook.ENOTFOUND, "recipe not found")
	}
	return recipe, err
}

// FindRecipes retrieves recipes matching the filter, newest first.
func (s *RecipeService) FindRecipes(ctx context.Context, filter cookbook.RecipeFilter) ([]*cookbook.Recipe, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recipeColumns + " FROM recipes r JOIN categories c ON c.id = r.category_id WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND r.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.OwnerID != nil {
		query.WriteString(" AND r.owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.Category != nil {
		query.WriteString(" AND c.name = ?")
		args = append(args, *filter.Category)
	}
	if filter.Title != nil {
		query.WriteString(" AND r.title = ? COLLATE NOCASE")
		args = append(args, *filter.Title)
	}

	query.WriteString(" ORDER BY r.created_at DESC, r.rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*cookbook.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

// UpdateRecipe updates an existing recipe. Changing the category marks the
// assignment as user-chosen and removes the previous category once it holds
// no recipes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, upd cookbook.RecipeUpdate) (*cookbook.Recipe, error) {
	recipe, err := s.FindRecipeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		recipe.Title = *upd.Title
	}
	if upd.Description != nil {
		recipe.Description = *upd.Description
	}
	if upd.Ingredients != nil {
		recipe.Ingredients = upd.Ingredients
	}
	if upd.Steps != nil {
		recipe.Steps = upd.Steps
	}
	if upd.Image != nil {
		recipe.Image = upd.Image
	}
	if upd.Cuisine != nil {
		recipe.Cuisine = *upd.Cuisine
	}
	if upd.PrepTime != nil {
		recipe.PrepTime = *upd.PrepTime
	}
	if upd.CleanupTime != nil {
		recipe.CleanupTime = *upd.CleanupTime
	}
	if upd.Category != nil && !strings.EqualFold(strings.TrimSpace(*upd.Category), recipe.Category) {
		recipe.Category = *upd.Category
		recipe.CategorySource = cookbook.CategorySourceUserCreated
		recipe.CategoryConfidence = 1.0
	}

	recipe.Normalize()
	if err := recipe.Validate(); err != nil {
		return nil, err
	}

	ingredients, err := encodeList(recipe.Ingredients)
	if err != nil {
		return nil, err
	}
	steps, err := encodeList(recipe.Steps)
	if err != nil {
		return nil, err
	}

	err = s.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkTitle(ctx, tx, recipe.OwnerID, recipe.Title, recipe.ID); err != nil {
			return err
		}

		var oldCategoryID string
		err := tx.QueryRowContext(ctx, "SELECT category_id FROM recipes WHERE id = ?", recipe.ID).Scan(&oldCategoryID)
		if err == sql.ErrNoRows {
			return cookbook.Errorf(cookbook.ENOTFOUND, "recipe not found")
		}
		if err != nil {
			return err
		}

		categoryID, err := ensureCategory(ctx, tx, recipe.OwnerID, recipe.Category, recipe.CategorySource)
		if err != nil {
			return err
		}

		recipe.UpdatedAt = time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			UPDATE recipes
			SET title = ?, description = ?, ingredients = ?, steps = ?, image = ?, cuisine = ?,
				category_id = ?, category_source = ?, category_confidence = ?, prep_time = ?,
				cleanup_time = ?, updated_at = ?
			WHERE id = ?
		`, recipe.Title, recipe.Description, ingredients, steps, nullString(recipe.Image), recipe.Cuisine,
			categoryID, string(recipe.CategorySource), recipe.CategoryConfidence, recipe.PrepTime,
			recipe.CleanupTime, formatTime(recipe.UpdatedAt), recipe.ID)
		if err != nil {
			return err
		}
		if oldCategoryID != categoryID {
			return pruneCategory(ctx, tx, oldCategoryID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Re-read so the category carries its stored spelling.
	return s.FindRecipeByID(ctx, id)
}

// DeleteRecipe permanently removes a recipe. A category left without
// recipes is removed with it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		var categoryID string
		err := tx.QueryRowContext(ctx, "SELECT category_id FROM recipes WHERE id = ?", id).Scan(&categoryID)
		if err == sql.ErrNoRows {
			return cookbook.Errorf(cookbook.ENOTFOUND, "recipe not found")
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id); err != nil {
			return err
		}
		return pruneCategory(ctx, tx, categoryID)
	})
}

// checkTitle returns ECONFLICT when the owner has another recipe with the
// same title, ignoring case.
func checkTitle(ctx context.Context, q queryer, ownerID, title, exceptID string) error {
	var id string
	err := q.QueryRowContext(ctx, `
		SELECT id FROM recipes WHERE owner_id = ? AND title = ? COLLATE NOCASE AND id != ? LIMIT 1
	`, ownerID, title, exceptID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return cookbook.Errorf(cookbook.ECONFLICT, "Recipe %q already exists", title)
}

func scanRecipe(row scanner) (*cookbook.Recipe, error) {
	var r cookbook.Recipe
	var ingredients, steps, source, createdAt, updatedAt string
	var image sql.NullString

	if err := row.Scan(&r.ID, &r.OwnerID, &r.Title, &r.Description, &ingredients, &steps, &image,
		&r.Cuisine, &r.Category, &source, &r.CategoryConfidence, &r.PrepTime,
		&r.CleanupTime, &r.SourceURL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.CategorySource = cookbook.CategorySource(source)
	if image.Valid {
		r.Image = &image.String
	}

	var err error
	if r.Ingredients, err = decodeList(ingredients, "ingredients"); err != nil {
		return nil, err
	}
	if r.Steps, err = decodeList(steps, "steps"); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &r, nil
}
