package protect

import "sort"

// Violation records a baseline identifier missing from a later snapshot.
type Violation struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
}

// categoryOrder fixes the report order of violation categories.
var categoryOrder = map[Category]int{
	CategoryFunction:   0,
	CategoryClass:      1,
	CategoryCall:       2,
	CategoryEntryPoint: 3,
}

// Diff compares each category of baseline independently against current and
// reports every baseline member that disappeared. The result is sorted by
// category, then name.
func Diff(baseline, current Identifiers) []Violation {
	var violations []Violation
	appendMissing := func(cat Category, base, cur map[string]struct{}) {
		for name := range base {
			if _, ok := cur[name]; !ok {
				violations = append(violations, Violation{Category: cat, Name: name})
			}
		}
	}
	appendMissing(CategoryFunction, baseline.Functions, current.Functions)
	appendMissing(CategoryClass, baseline.Classes, current.Classes)
	appendMissing(CategoryCall, baseline.Calls, current.Calls)
	appendMissing(CategoryEntryPoint, baseline.EntryPoints, current.EntryPoints)

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Category != violations[j].Category {
			return categoryOrder[violations[i].Category] < categoryOrder[violations[j].Category]
		}
		return violations[i].Name < violations[j].Name
	})
	return violations
}
