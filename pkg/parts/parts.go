// Package parts defines the minifigure body-part categories, the fixed
// workflow order between them, and the catalog naming conventions shared
// between catalog generation and matching.
package parts

import "fmt"

// Category identifies one minifigure body-part category.
type Category string

const (
	Head  Category = "head"
	Torso Category = "torso"
	Legs  Category = "legs"
)

// Order is the fixed workflow order of categories: head, then torso, then legs.
var Order = []Category{Head, Torso, Legs}

// ParseCategory converts a user-supplied string into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case Head, Torso, Legs:
		return Category(s), nil
	}
	return "", fmt.Errorf("unknown part category: %q", s)
}

// Next returns the category that follows c in the workflow order, and false
// when c is the last step.
func (c Category) Next() (Category, bool) {
	for i, cat := range Order {
		if cat == c && i+1 < len(Order) {
			return Order[i+1], true
		}
	}
	return "", false
}

// Title returns the human-facing crop step heading for the category.
func (c Category) Title() string {
	switch c {
	case Head:
		return "Step 1: Crop the HEAD"
	case Torso:
		return "Step 2: Crop the TORSO"
	case Legs:
		return "Step 3: Crop the LEGS"
	}
	return "Crop"
}
