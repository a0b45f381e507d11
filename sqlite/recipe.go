package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/recipecrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ recipecrawl.RecipeService = (*RecipeService)(nil)

// RecipeService implements recipecrawl.RecipeService using SQLite.
type RecipeService struct {
	db *DB
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(db *DB) *RecipeService {
	return &RecipeService{db: db}
}

// hashRecipe computes xxHash of the recipe's content fields and returns a
// hex string. Identity and bookkeeping fields are excluded so re-crawling
// an unchanged page produces the same hash.
func hashRecipe(r *recipecrawl.Recipe) string {
	content := *r
	content.ID = ""
	content.ContentHash = ""
	content.FetchedAt = time.Time{}
	encoded, _ := json.Marshal(&content)

	h := xxhash.Sum64(encoded)
	b := make([]byte, 8)
	b[0] = byte(h >> 56)
	b[1] = byte(h >> 48)
	b[2] = byte(h >> 40)
	b[3] = byte(h >> 32)
	b[4] = byte(h >> 24)
	b[5] = byte(h >> 16)
	b[6] = byte(h >> 8)
	b[7] = byte(h)
	return hex.EncodeToString(b)
}

// CreateRecipe stores a recipe, replacing any earlier record with the same
// URL. On replacement the existing row ID is kept.
func (s *RecipeService) CreateRecipe(ctx context.Context, r *recipecrawl.Recipe) error {
	if err := r.Validate(); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	r.FetchedAt = time.Now().UTC()
	r.ContentHash = hashRecipe(r)

	ingredients, err := marshalColumn(r.Ingredients)
	if err != nil {
		return err
	}
	instructions, err := marshalColumn(r.Instructions)
	if err != nil {
		return err
	}
	nutrition, err := marshalColumn(r.Nutrition)
	if err != nil {
		return err
	}
	notes, err := marshalColumn(r.Notes)
	if err != nil {
		return err
	}
	keywords, err := marshalColumn(r.Keywords)
	if err != nil {
		return err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO recipes (
			id, url, name, rating_avg, rating_count, cost_total,
			cost_per_serving, servings, serving_unit, prep_minutes,
			cook_minutes, total_minutes, ingredients, instructions,
			nutrition, notes, keywords, content_hash, fetched_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			rating_avg = excluded.rating_avg,
			rating_count = excluded.rating_count,
			cost_total = excluded.cost_total,
			cost_per_serving = excluded.cost_per_serving,
			servings = excluded.servings,
			serving_unit = excluded.serving_unit,
			prep_minutes = excluded.prep_minutes,
			cook_minutes = excluded.cook_minutes,
			total_minutes = excluded.total_minutes,
			ingredients = excluded.ingredients,
			instructions = excluded.instructions,
			nutrition = excluded.nutrition,
			notes = excluded.notes,
			keywords = excluded.keywords,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
		RETURNING id
	`, r.ID, r.URL, r.Name, r.RatingAvg, r.RatingCount, r.CostTotal,
		r.CostPerServing, r.Servings, r.ServingUnit, r.PrepMinutes,
		r.CookMinutes, r.TotalMinutes, ingredients, instructions,
		nutrition, notes, keywords, r.ContentHash,
		r.FetchedAt.Format(time.RFC3339)).Scan(&r.ID)

	return err
}

// FindRecipeByURL retrieves a recipe by its source URL.
func (s *RecipeService) FindRecipeByURL(ctx context.Context, url string) (*recipecrawl.Recipe, error) {
	row := s.db.QueryRowContext(ctx, selectRecipe+" WHERE url = ?", url)

	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, recipecrawl.Errorf(recipecrawl.ENOTFOUND, "recipe not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FindRecipes retrieves recipes matching the filter, newest first.
func (s *RecipeService) FindRecipes(ctx context.Context, filter recipecrawl.RecipeFilter) ([]*recipecrawl.Recipe, error) {
	var query strings.Builder
	var args []any

	query.WriteString(selectRecipe)
	query.WriteString(" WHERE 1=1")

	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Name != nil {
		query.WriteString(" AND name LIKE ?")
		args = append(args, "%"+*filter.Name+"%")
	}
	if filter.Keyword != nil {
		// Keywords are stored as a JSON array of lowercase strings.
		query.WriteString(" AND keywords LIKE ?")
		encoded, err := json.Marshal(strings.ToLower(*filter.Keyword))
		if err != nil {
			return nil, err
		}
		args = append(args, "%"+string(encoded)+"%")
	}
	if filter.MinAvg != nil {
		query.WriteString(" AND rating_avg >= ?")
		args = append(args, *filter.MinAvg)
	}

	query.WriteString(" ORDER BY fetched_at DESC, url ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*recipecrawl.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	return recipes, rows.Err()
}

const selectRecipe = `
	SELECT id, url, name, rating_avg, rating_count, cost_total,
		cost_per_serving, servings, serving_unit, prep_minutes,
		cook_minutes, total_minutes, ingredients, instructions,
		nutrition, notes, keywords, content_hash, fetched_at
	FROM recipes`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row scanner) (*recipecrawl.Recipe, error) {
	var r recipecrawl.Recipe
	var ingredients, instructions, nutrition, notes, keywords string
	var fetchedAt string

	if err := row.Scan(&r.ID, &r.URL, &r.Name, &r.RatingAvg, &r.RatingCount,
		&r.CostTotal, &r.CostPerServing, &r.Servings, &r.ServingUnit,
		&r.PrepMinutes, &r.CookMinutes, &r.TotalMinutes, &ingredients,
		&instructions, &nutrition, &notes, &keywords, &r.ContentHash,
		&fetchedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(instructions), &r.Instructions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(nutrition), &r.Nutrition); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(notes), &r.Notes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
		return nil, err
	}

	var err error
	r.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// marshalColumn encodes a collection field for storage, normalizing nil
// slices and maps to their empty JSON forms.
func marshalColumn(v any) (string, error) {
	switch val := v.(type) {
	case []string:
		if val == nil {
			return "[]", nil
		}
	case map[string]string:
		if val == nil {
			return "{}", nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
