package mock

import (
	"context"

	"github.com/fwojciec/recipecrawl"
)

var _ recipecrawl.RecipeService = (*RecipeService)(nil)

// RecipeService is a mock implementation of recipecrawl.RecipeService.
type RecipeService struct {
	CreateRecipeFn    func(ctx context.Context, recipe *recipecrawl.Recipe) error
	FindRecipeByURLFn func(ctx context.Context, url string) (*recipecrawl.Recipe, error)
	FindRecipesFn     func(ctx context.Context, filter recipecrawl.RecipeFilter) ([]*recipecrawl.Recipe, error)
}

func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *recipecrawl.Recipe) error {
	return s.CreateRecipeFn(ctx, recipe)
}

func (s *RecipeService) FindRecipeByURL(ctx context.Context, url string) (*recipecrawl.Recipe, error) {
	return s.FindRecipeByURLFn(ctx, url)
}

func (s *RecipeService) FindRecipes(ctx context.Context, filter recipecrawl.RecipeFilter) ([]*recipecrawl.Recipe, error) {
	return s.FindRecipesFn(ctx, filter)
}
