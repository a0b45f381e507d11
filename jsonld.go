package recipecrawl

import "encoding/json"

// Schema.org type discriminator values.
const (
	typeRecipe       = "Recipe"
	typeHowToSection = "HowToSection"
	typeHowToStep    = "HowToStep"
)

// FindRecipe locates the schema.org Recipe object inside a page's
// JSON-LD payload. Publishers encode the payload in one of three
// shapes: a bare object, a list of objects, or an object wrapping a
// @graph list. All three are normalized into one candidate sequence
// before the type filter runs, so equivalent payloads produce the same
// Recipe object.
//
// Returns EINVALID if the payload is not valid JSON. A payload that
// decodes but contains no Recipe object returns (nil, nil) — absence
// is not an error.
func FindRecipe(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, Errorf(EINVALID, "decoding JSON-LD: %v", err)
	}

	for _, candidate := range ldCandidates(v) {
		m, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		if m["@type"] == typeRecipe {
			return m, nil
		}
	}
	return nil, nil
}

// ldCandidates flattens a decoded JSON-LD value into the sequence of
// objects to search for a Recipe.
func ldCandidates(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			return graph
		}
		return []any{t}
	}
	return nil
}

// FlattenInstructions flattens a raw recipeInstructions tree into an
// ordered list of step texts. Steps nested inside a HowToSection are
// prefixed with the section name ("Sauce: Whisk together..."). Nodes
// of unrecognized shape are skipped.
//
// Output order equals document order; step N of the recipe is element
// N-1 of the result, so numbering is contiguous from 1.
func FlattenInstructions(nodes []any) []string {
	steps := []string{}
	for _, node := range nodes {
		steps = appendInstruction(steps, node, "")
	}
	return steps
}

// appendInstruction walks one instruction node depth-first, carrying
// the enclosing section name, and returns the extended accumulator.
func appendInstruction(steps []string, node any, section string) []string {
	m, ok := node.(map[string]any)
	if !ok {
		return steps
	}

	switch m["@type"] {
	case typeHowToSection:
		name, _ := m["name"].(string)
		items, _ := m["itemListElement"].([]any)
		for _, item := range items {
			steps = appendInstruction(steps, item, name)
		}
	case typeHowToStep:
		text, _ := m["text"].(string)
		if section != "" {
			text = section + ": " + text
		}
		steps = append(steps, text)
	}
	return steps
}
