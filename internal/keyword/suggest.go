package keyword

import (
	"strings"
)

// Suggester proposes a corrected query from the indexed vocabulary.
type Suggester struct {
	dict        TermDictionary
	maxDistance int
}

// NewSuggester returns a Suggester over dict accepting corrections up to maxDistance edits (default 2).
func NewSuggester(dict TermDictionary, maxDistance int) *Suggester {
	if maxDistance <= 0 {
		maxDistance = 2
	}
	return &Suggester{dict: dict, maxDistance: maxDistance}
}

// Suggest replaces each unknown term of query with its closest indexed term, preferring
// fewer edits and then higher document frequency. It returns "" when nothing changed.
func (s *Suggester) Suggest(query string) (string, error) {
	terms, err := s.dict.Terms()
	if err != nil {
		return "", err
	}
	words := tokenizeQuery(query)
	changed := false
	for i, w := range words {
		if _, ok := terms[w]; ok {
			continue
		}
		if best := s.closest(w, terms); best != "" {
			words[i] = best
			changed = true
		}
	}
	if !changed {
		return "", nil
	}
	return strings.Join(words, " "), nil
}

func (s *Suggester) closest(word string, terms map[string]int) string {
	best, bestDist, bestFreq := "", s.maxDistance+1, 0
	wl := len([]rune(word))
	for term, freq := range terms {
		diff := len([]rune(term)) - wl
		if diff > s.maxDistance || -diff > s.maxDistance {
			continue
		}
		d := levenshtein(word, term)
		if d > s.maxDistance {
			continue
		}
		if d < bestDist || (d == bestDist && (freq > bestFreq || (freq == bestFreq && term < best))) {
			best, bestDist, bestFreq = term, d, freq
		}
	}
	return best
}

// levenshtein returns the rune edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
