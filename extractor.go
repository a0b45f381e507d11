package recipecrawl

// RecipeExtractor turns a fetched page into an extraction outcome.
//
// Extraction is pure with respect to shared state: it performs no I/O
// and is safe to call concurrently. The outcome is always one of
// success (a full record), skipped (the page is not a recipe), or
// failed (the page carried malformed data).
type RecipeExtractor interface {
	Extract(url, html string) *Outcome
}
