// Package goquery implements recipe page detection and extraction by
// parsing page markup with the goquery library.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/recipecrawl"
)

// Default CSS selectors matching the target site's markup.
const (
	// DefaultRecipeCardSelector is the recipe-card container. Recipe
	// pages can be told apart from other posts by its presence.
	DefaultRecipeCardSelector = "div.bb-recipe-card"

	// DefaultJSONLDSelector matches the embedded structured data block.
	DefaultJSONLDSelector = `script[type="application/ld+json"]`

	// DefaultCostSelector matches the element carrying cost text.
	DefaultCostSelector = "span.cost-per"

	// DefaultNotesSelector matches the recipe notes container.
	DefaultNotesSelector = "div.wprm-recipe-notes"
)

// Ensure Extractor implements recipecrawl.RecipeExtractor at compile time.
var _ recipecrawl.RecipeExtractor = (*Extractor)(nil)

// Extractor extracts normalized recipe records from fetched pages.
// It is stateless and safe for concurrent use.
type Extractor struct {
	recipeCard string
	jsonLD     string
	cost       string
	notes      string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecipeCardSelector overrides the recipe-card detection selector.
func WithRecipeCardSelector(sel string) Option {
	return func(e *Extractor) { e.recipeCard = sel }
}

// WithCostSelector overrides the cost element selector.
func WithCostSelector(sel string) Option {
	return func(e *Extractor) { e.cost = sel }
}

// WithNotesSelector overrides the notes container selector.
func WithNotesSelector(sel string) Option {
	return func(e *Extractor) { e.notes = sel }
}

// NewExtractor creates a new Extractor with the default selectors.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		recipeCard: DefaultRecipeCardSelector,
		jsonLD:     DefaultJSONLDSelector,
		cost:       DefaultCostSelector,
		notes:      DefaultNotesSelector,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs the per-page pipeline: detect the recipe card, locate
// the Recipe object in the JSON-LD block, and normalize its fields.
//
// A page without the recipe card or without a Recipe object is
// skipped, never failed. Malformed JSON-LD and a non-numeric serving
// count fail the extraction with the triggering reason.
func (e *Extractor) Extract(url, html string) *recipecrawl.Outcome {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return recipecrawl.Failed(url, "parsing HTML: "+err.Error())
	}

	if doc.Find(e.recipeCard).Length() == 0 {
		return recipecrawl.Skipped(url, "not a recipe page")
	}

	script := doc.Find(e.jsonLD).First()
	if script.Length() == 0 {
		return recipecrawl.Skipped(url, "no JSON-LD script on page")
	}

	src, err := recipecrawl.FindRecipe([]byte(script.Text()))
	if err != nil {
		return recipecrawl.Failed(url, recipecrawl.ErrorMessage(err))
	}
	if src == nil {
		return recipecrawl.Skipped(url, "no Recipe object in JSON-LD")
	}

	recipe, err := e.buildRecipe(url, src, doc)
	if err != nil {
		return recipecrawl.Failed(url, recipecrawl.ErrorMessage(err))
	}
	return recipecrawl.Success(recipe)
}

// buildRecipe normalizes the located Recipe object and the page's cost
// and notes markup into a record.
func (e *Extractor) buildRecipe(url string, src map[string]any, doc *goquery.Document) (*recipecrawl.Recipe, error) {
	servings, unit, err := recipecrawl.ParseYield(src["recipeYield"])
	if err != nil {
		return nil, err
	}

	prep := recipecrawl.ParseMinutes(src["prepTime"])
	cook := recipecrawl.ParseMinutes(src["cookTime"])
	total := prep + cook
	if raw, ok := src["totalTime"]; ok {
		total = recipecrawl.ParseMinutes(raw)
	}

	avg, count := recipecrawl.ParseRating(src["aggregateRating"])
	costTotal, costPer := recipecrawl.ParseCost(doc.Find(e.cost).First().Text())
	instructions, _ := src["recipeInstructions"].([]any)
	name, _ := src["name"].(string)

	return &recipecrawl.Recipe{
		URL:            url,
		Name:           name,
		RatingAvg:      avg,
		RatingCount:    count,
		CostTotal:      costTotal,
		CostPerServing: costPer,
		Servings:       servings,
		ServingUnit:    unit,
		PrepMinutes:    prep,
		CookMinutes:    cook,
		TotalMinutes:   total,
		Ingredients:    recipecrawl.NormalizeIngredients(src["recipeIngredient"]),
		Instructions:   recipecrawl.FlattenInstructions(instructions),
		Nutrition:      recipecrawl.NormalizeNutrition(src["nutrition"]),
		Notes:          e.extractNotes(doc),
		Keywords:       recipecrawl.ParseKeywords(src["keywords"]),
	}, nil
}

// extractNotes collects the non-empty, trimmed text of each node under
// the notes container, in document order.
func (e *Extractor) extractNotes(doc *goquery.Document) []string {
	var notes []string
	doc.Find(e.notes).First().Contents().Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			notes = append(notes, text)
		}
	})
	return notes
}
