package recipecrawl

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Field normalizers for raw schema.org Recipe values.
//
// Each routine is either fault-tolerant (malformed input produces a
// documented default) or fault-intolerant (malformed input produces an
// error that fails the whole extraction):
//
//	durations   ParseMinutes         tolerant, default 0
//	yield       ParseYield           INTOLERANT — servings must be numeric
//	cost        ParseCost            tolerant, default Unknown/Unknown
//	rating      ParseRating          tolerant, default Unknown/Unknown
//	ingredients NormalizeIngredients tolerant
//	nutrition   NormalizeNutrition   tolerant
//	keywords    ParseKeywords        tolerant, default empty set
//
// Servings is the only intolerant field: it is load-bearing for recipe
// comparison and a record with a made-up serving count is worse than no
// record at all.

// ParseMinutes extracts a duration in minutes from a raw JSON-LD value.
// Integers pass through unchanged; anything else is coerced to a string
// and its digit characters are concatenated and parsed ("PT25M" → 25,
// "25 minutes" → 25). Values without digits yield 0.
func ParseMinutes(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case float64:
		// encoding/json decodes JSON numbers as float64.
		return int(t)
	}

	var digits strings.Builder
	for _, r := range fmt.Sprint(v) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// yieldQuantityPattern matches the numeric quantity at the start of a
// yield string ("4 servings" → "4").
var yieldQuantityPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?`)

// ParseYield parses a schema.org recipeYield value into a serving count
// and unit. The raw value is either a single quantity string or a
// two-element [quantity, unit] list; a single string means no unit, even
// when trailing text follows the quantity ("4 servings" → 4, "").
//
// The unit text on the source site repeats the quantity and wraps the
// unit in parentheses ("4 (servings)"), so the literal quantity
// substring and any parentheses are stripped before trimming.
//
// Returns EINVALID if the quantity does not start with a number. This is
// the only normalizer whose failure aborts the extraction.
func ParseYield(v any) (servings float64, unit string, err error) {
	var quantity string
	switch t := v.(type) {
	case string:
		quantity = t
	case []any:
		if len(t) > 0 {
			quantity, _ = t[0].(string)
		}
		if len(t) > 1 {
			unit, _ = t[1].(string)
		}
	case nil:
		// fall through to the numeric check, which reports the error
	default:
		return 0, "", Errorf(EINVALID, "recipe yield has unsupported shape %T", v)
	}

	raw := strings.TrimSpace(quantity)
	quantity = yieldQuantityPattern.FindString(raw)
	if quantity == "" {
		return 0, "", Errorf(EINVALID, "servings %q is not numeric", raw)
	}
	servings, perr := strconv.ParseFloat(quantity, 64)
	if perr != nil {
		return 0, "", Errorf(EINVALID, "servings %q is not numeric", quantity)
	}

	if quantity != "" {
		unit = strings.ReplaceAll(unit, quantity, "")
	}
	unit = strings.NewReplacer("(", "", ")", "").Replace(unit)
	return servings, strings.TrimSpace(unit), nil
}

// costPattern matches runs of digits and decimal points in cost text.
var costPattern = regexp.MustCompile(`[\d.]+`)

// ParseCost extracts the total and per-serving cost from the text of
// the page's cost element. The source UI renders the total before the
// per-serving amount ("$12.50 recipe / $1.25 serving"); a single amount
// is the per-serving cost. Missing amounts are reported as Unknown.
func ParseCost(text string) (total, per float64) {
	total, per = Unknown, Unknown

	var amounts []float64
	for _, m := range costPattern.FindAllString(text, -1) {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			// stray "." runs between amounts
			continue
		}
		amounts = append(amounts, f)
	}

	switch {
	case len(amounts) == 0:
	case len(amounts) == 1:
		per = amounts[0]
	default:
		total, per = amounts[0], amounts[1]
	}
	return total, per
}

// ParseRating extracts the average rating and vote count from a raw
// aggregateRating object. Absent or malformed values yield Unknown.
func ParseRating(v any) (avg float64, count int) {
	avg, count = Unknown, Unknown
	m, ok := v.(map[string]any)
	if !ok {
		return avg, count
	}
	if f, ok := toFloat(m["ratingValue"]); ok {
		avg = f
	}
	if f, ok := toFloat(m["ratingCount"]); ok {
		count = int(f)
	}
	return avg, count
}

// toFloat coerces a JSON-LD scalar to a float64.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// NormalizeIngredient collapses internal whitespace runs to single
// spaces and trims the ends.
func NormalizeIngredient(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeIngredients normalizes a raw recipeIngredient list,
// preserving order. Non-string entries are skipped.
func NormalizeIngredients(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, NormalizeIngredient(s))
	}
	return out
}

// NormalizeNutrition copies a raw schema.org NutritionInformation
// object, dropping the @type discriminator. Values pass through
// unvalidated; non-string scalars are rendered with their default
// formatting.
func NormalizeNutrition(v any) map[string]string {
	m, _ := v.(map[string]any)
	out := make(map[string]string, len(m))
	for k, val := range m {
		if k == "@type" {
			continue
		}
		switch t := val.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

// ParseKeywords splits a comma-separated keyword string into a sorted,
// deduplicated set of lowercase, trimmed keywords. An absent or empty
// value yields an empty set.
func ParseKeywords(v any) []string {
	s, _ := v.(string)

	seen := make(map[string]struct{})
	var out []string
	for _, kw := range strings.Split(strings.ToLower(s), ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
