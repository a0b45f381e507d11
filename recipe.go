package recipecrawl

import (
	"context"
	"time"
)

// Sentinel value for numeric fields that are absent from the source page.
// The dataset uses -1 rather than null so downstream consumers can keep
// the columns numeric.
const Unknown = -1

// Recipe is the normalized record extracted from a single recipe page.
//
// Instructions are stored in flattening order; step N of the recipe is
// Instructions[N-1], so numbering is always contiguous starting at 1.
// Keywords are lowercase, trimmed, deduplicated and sorted.
type Recipe struct {
	ID  string `json:"id"`
	URL string `json:"url"`

	Name        string  `json:"name"`
	RatingAvg   float64 `json:"ratingAvg"`   // Unknown when absent
	RatingCount int     `json:"ratingCount"` // Unknown when absent

	CostTotal      float64 `json:"costTotal"`      // Unknown when not on the page
	CostPerServing float64 `json:"costPerServing"` // Unknown when not on the page

	Servings    float64 `json:"servings"`
	ServingUnit string  `json:"servingUnit"`

	PrepMinutes  int `json:"prepMinutes"`
	CookMinutes  int `json:"cookMinutes"`
	TotalMinutes int `json:"totalMinutes"`

	Ingredients  []string          `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	Nutrition    map[string]string `json:"nutrition"`
	Notes        []string          `json:"notes"`
	Keywords     []string          `json:"keywords"`

	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Validate returns an error if the recipe contains invalid fields.
func (r *Recipe) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "recipe URL required")
	}
	if r.Name == "" {
		return Errorf(EINVALID, "recipe name required")
	}
	return nil
}

// Status classifies the result of one extraction attempt.
type Status string

// Extraction outcome statuses.
const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the result of attempting to extract a recipe from one URL.
// Every attempt produces exactly one outcome; a partial record is never
// emitted.
type Outcome struct {
	URL    string
	Status Status
	Recipe *Recipe // set only when Status == StatusSuccess
	Reason string  // set only when Status != StatusSuccess
}

// Success returns a successful outcome carrying the extracted recipe.
func Success(r *Recipe) *Outcome {
	return &Outcome{URL: r.URL, Status: StatusSuccess, Recipe: r}
}

// Skipped returns an outcome for a page that is not a recipe.
// Skips are expected and are not errors.
func Skipped(url, reason string) *Outcome {
	return &Outcome{URL: url, Status: StatusSkipped, Reason: reason}
}

// Failed returns an outcome for a page that could not be extracted.
func Failed(url, reason string) *Outcome {
	return &Outcome{URL: url, Status: StatusFailed, Reason: reason}
}

// RecipeWriter writes recipes to storage.
type RecipeWriter interface {
	CreateRecipe(ctx context.Context, recipe *Recipe) error
}

// RecipeService represents a service for managing stored recipes.
type RecipeService interface {
	// CreateRecipe stores a recipe. Recipes are keyed by URL; storing a
	// recipe with a URL that already exists replaces the earlier record.
	CreateRecipe(ctx context.Context, recipe *Recipe) error

	// FindRecipeByURL retrieves a recipe by its source URL.
	// Returns ENOTFOUND if no recipe with the URL exists.
	FindRecipeByURL(ctx context.Context, url string) (*Recipe, error)

	// FindRecipes retrieves recipes matching the filter.
	FindRecipes(ctx context.Context, filter RecipeFilter) ([]*Recipe, error)
}

// RecipeFilter represents a filter for FindRecipes.
type RecipeFilter struct {
	URL     *string  `json:"url"`
	Name    *string  `json:"name"`
	Keyword *string  `json:"keyword"`
	MinAvg  *float64 `json:"minAvg"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
