// Package typoutil finds names that are a few edits away from a misspelled one.
package typoutil

import (
	"sort"
	"strings"
)

// Distance calculates the Damerau-Levenshtein distance between a and b:
// insertions, deletions, substitutions and transpositions of adjacent runes
// each cost one. It returns maxDistance + 1 as soon as the distance is known
// to exceed maxDistance.
func Distance(a, b string, maxDistance int) int {
	runesA := []rune(a)
	runesB := []rune(b)

	lenA := len(runesA)
	lenB := len(runesB)

	lengthDiff := lenA - lenB
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff > maxDistance {
		return maxDistance + 1
	}

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// three rows: transpositions look two rows back
	prevPrevRow := make([]int, lenB+1)
	prevRow := make([]int, lenB+1)
	currRow := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prevRow[j] = j
	}

	for i := 1; i <= lenA; i++ {
		currRow[0] = i
		minInRow := i

		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}

			currRow[j] = min(
				prevRow[j]+1,      // deletion
				currRow[j-1]+1,    // insertion
				prevRow[j-1]+cost, // substitution
			)

			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				currRow[j] = min(currRow[j], prevPrevRow[j-2]+cost)
			}

			minInRow = min(minInRow, currRow[j])
		}

		if minInRow > maxDistance {
			return maxDistance + 1
		}

		prevPrevRow, prevRow, currRow = prevRow, currRow, prevPrevRow
	}

	return prevRow[lenB]
}

type suggestion struct {
	name     string
	distance int
}

// Suggest returns up to maxResults candidates within maxDistance edits of
// term, closest first. Distances ignore case, so a candidate differing from
// term only in case is suggested at distance 0; a candidate equal to term is
// never suggested.
func Suggest(term string, candidates []string, maxDistance, maxResults int) []string {
	if term == "" || maxDistance <= 0 || maxResults <= 0 {
		return nil
	}
	lowered := strings.ToLower(term)

	var found []suggestion
	for _, candidate := range candidates {
		if candidate == term {
			continue
		}
		d := Distance(lowered, strings.ToLower(candidate), maxDistance)
		if d <= maxDistance {
			found = append(found, suggestion{name: candidate, distance: d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].name < found[j].name
	})

	if len(found) == 0 {
		return nil
	}
	if len(found) > maxResults {
		found = found[:maxResults]
	}
	names := make([]string, len(found))
	for i, s := range found {
		names[i] = s.name
	}
	return names
}

// MaxDistanceFor scales the tolerated number of edits with the length of
// the term: none below 4 runes, one below 8, two otherwise.
func MaxDistanceFor(term string) int {
	switch n := len([]rune(term)); {
	case n < 4:
		return 0
	case n < 8:
		return 1
	default:
		return 2
	}
}
