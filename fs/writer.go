// Package fs writes harvest artifacts to the local filesystem.
package fs

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/recipecrawl"
	"github.com/fwojciec/recipecrawl/crawl"
)

// Output file names within the target directory.
const (
	RecipesFile = "recipes.csv"
	SkippedFile = "skipped.txt"
	FailedFile  = "failed.txt"
)

var csvHeader = []string{
	"url",
	"name",
	"rating_avg",
	"rating_count",
	"cost_total",
	"cost_per_serving",
	"servings",
	"serving_unit",
	"prep_minutes",
	"cook_minutes",
	"total_minutes",
	"ingredients",
	"instructions",
	"nutrition",
	"notes",
	"keywords",
}

// Writer writes the tabular dataset and reason logs into a directory.
// Each file is written to a temporary name and renamed into place, so an
// interrupted run never leaves a truncated dataset behind.
type Writer struct {
	dir string
}

// NewWriter creates a new Writer that writes into the given directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteResult writes recipes.csv, skipped.txt, and failed.txt for a
// harvest result, creating the directory if needed.
func (w *Writer) WriteResult(result *crawl.Result) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := w.WriteRecipes(result.Recipes); err != nil {
		return err
	}
	if err := w.writeClassifications(SkippedFile, result.Skipped); err != nil {
		return err
	}
	return w.writeClassifications(FailedFile, result.Failed)
}

// WriteRecipes writes the recipe dataset as CSV. List fields are encoded
// as JSON arrays and instructions as a JSON object keyed by 1-based step
// number, so a row round-trips through any CSV reader without losing
// structure.
func (w *Writer) WriteRecipes(recipes []*recipecrawl.Recipe) error {
	return w.writeFileAtomic(RecipesFile, func(f io.Writer) error {
		cw := csv.NewWriter(f)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range recipes {
			record, err := recipeRecord(r)
			if err != nil {
				return err
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func (w *Writer) writeClassifications(name string, entries []crawl.Classification) error {
	return w.writeFileAtomic(name, func(f io.Writer) error {
		var b strings.Builder
		for _, e := range entries {
			b.WriteString(e.URL)
			b.WriteString(": ")
			b.WriteString(e.Reason)
			b.WriteString("\n")
		}
		_, err := io.WriteString(f, b.String())
		return err
	})
}

// writeFileAtomic writes to name.tmp and renames to name on success.
func (w *Writer) writeFileAtomic(name string, write func(io.Writer) error) error {
	tmpPath := filepath.Join(w.dir, name+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, filepath.Join(w.dir, name))
}

func recipeRecord(r *recipecrawl.Recipe) ([]string, error) {
	ingredients, err := marshalList(r.Ingredients)
	if err != nil {
		return nil, err
	}
	instructions, err := marshalInstructions(r.Instructions)
	if err != nil {
		return nil, err
	}
	nutrition, err := marshalNutrition(r.Nutrition)
	if err != nil {
		return nil, err
	}
	notes, err := marshalList(r.Notes)
	if err != nil {
		return nil, err
	}
	keywords, err := marshalList(r.Keywords)
	if err != nil {
		return nil, err
	}

	return []string{
		r.URL,
		r.Name,
		formatFloat(r.RatingAvg),
		strconv.Itoa(r.RatingCount),
		formatFloat(r.CostTotal),
		formatFloat(r.CostPerServing),
		formatFloat(r.Servings),
		r.ServingUnit,
		strconv.Itoa(r.PrepMinutes),
		strconv.Itoa(r.CookMinutes),
		strconv.Itoa(r.TotalMinutes),
		ingredients,
		instructions,
		nutrition,
		notes,
		keywords,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func marshalList(items []string) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// marshalInstructions builds the JSON object by hand because step keys
// must stay in step order; json.Marshal of a map sorts keys
// lexicographically, which puts step 10 before step 2.
func marshalInstructions(steps []string) (string, error) {
	var b strings.Builder
	b.WriteString("{")
	for i, step := range steps {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.Quote(strconv.Itoa(i + 1)))
		b.WriteString(":")
		v, err := json.Marshal(step)
		if err != nil {
			return "", err
		}
		b.Write(v)
	}
	b.WriteString("}")
	return b.String(), nil
}

func marshalNutrition(nutrition map[string]string) (string, error) {
	if len(nutrition) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(nutrition)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
