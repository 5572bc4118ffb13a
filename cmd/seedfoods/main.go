// Command seedfoods converts a food composition Excel workbook into a SQL
// seed file for the food_composition table. The sheet is expected to carry
// one food per row: code, name, then per-100g energy (kcal), protein, fat,
// and carbohydrate columns.
// Usage: go run ./cmd/seedfoods <workbook.xlsx> [sheet]
// Output: db/seeds/food_composition.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type foodEntry struct {
	code    string
	name    string
	energy  float64
	protein float64
	fat     float64
	carbs   float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedfoods <workbook.xlsx> [sheet]")
	}
	xlsxPath := os.Args[1]
	outPath := "db/seeds/food_composition.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if len(os.Args) > 2 {
		sheet = os.Args[2]
	}

	entries, skipped, err := parseSheet(f, sheet)
	if err != nil {
		return fmt.Errorf("parse sheet %q: %w", sheet, err)
	}
	log.Printf("sheet %s: %d entries, %d rows skipped", sheet, len(entries), skipped)

	if err := os.MkdirAll("db/seeds", 0o755); err != nil {
		return fmt.Errorf("create seeds dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Food composition seed data generated from Excel.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if werr := w("INSERT INTO food_composition (food_code, name, energy_kcal, protein_g, fat_g, carbs_g) VALUES"); werr != nil {
			return werr
		}
		for j, e := range entries[i:end] {
			sep := ","
			if j == end-i-1 {
				sep = ""
			}
			row := fmt.Sprintf("  ('%s', '%s', %g, %g, %g, %g)%s",
				sqlEscape(e.code), sqlEscape(e.name), e.energy, e.protein, e.fat, e.carbs, sep)
			if werr := w(row); werr != nil {
				return werr
			}
		}
		if werr := w("ON CONFLICT (food_code) DO NOTHING;"); werr != nil {
			return werr
		}
		if werr := w(""); werr != nil {
			return werr
		}
	}

	if werr := w("COMMIT;"); werr != nil {
		return werr
	}

	log.Printf("wrote %s", outPath)
	return nil
}

// parseSheet reads rows as (code, name, energy, protein, fat, carbs).
// Header rows and rows with no parsable energy value are skipped.
func parseSheet(f *excelize.File, sheet string) ([]foodEntry, int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]bool)
	var entries []foodEntry
	skipped := 0

	for _, row := range rows {
		if len(row) < 6 {
			skipped++
			continue
		}
		code := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		if code == "" || name == "" || seen[code] {
			skipped++
			continue
		}

		energy, eErr := parseNumber(row[2])
		if eErr != nil {
			// header or annotation row
			skipped++
			continue
		}

		protein, _ := parseNumber(row[3])
		fat, _ := parseNumber(row[4])
		carbs, _ := parseNumber(row[5])

		seen[code] = true
		entries = append(entries, foodEntry{
			code:    code,
			name:    name,
			energy:  energy,
			protein: protein,
			fat:     fat,
			carbs:   carbs,
		})
	}

	return entries, skipped, nil
}

// parseNumber tolerates the annotation markers composition tables use for
// trace or missing values ("Tr", "-", parenthesized estimates).
func parseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	s = strings.Trim(s, "()")
	if s == "" || s == "-" || strings.EqualFold(s, "Tr") {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
