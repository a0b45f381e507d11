package mock

import "github.com/fwojciec/recipecrawl"

var _ recipecrawl.RecipeExtractor = (*RecipeExtractor)(nil)

// RecipeExtractor is a mock implementation of recipecrawl.RecipeExtractor.
type RecipeExtractor struct {
	ExtractFn func(url, html string) *recipecrawl.Outcome
}

func (e *RecipeExtractor) Extract(url, html string) *recipecrawl.Outcome {
	return e.ExtractFn(url, html)
}
