// Package category defines the closed set of document categories the
// pipeline can assign. Unknown strings are rejected at the boundary instead
// of being carried through as free-form values.
package category

import "fmt"

// Category identifies a document classification result.
type Category string

const (
	Udostoverenie Category = "Udostoverenie"
	ENT           Category = "ENT"
	Lgota         Category = "Lgota"
	Diplom        Category = "Diplom"
	Privivka      Category = "Privivka"
	MedSpravka    Category = "MedSpravka"
	Unclassified  Category = "Unclassified"
)

// All lists every valid category, Unclassified last.
var All = []Category{
	Udostoverenie,
	ENT,
	Lgota,
	Diplom,
	Privivka,
	MedSpravka,
	Unclassified,
}

// Parse validates a raw category string.
func Parse(raw string) (Category, error) {
	for _, c := range All {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category: %q", raw)
}

// IsValid reports whether raw names a known category.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

func (c Category) String() string { return string(c) }
