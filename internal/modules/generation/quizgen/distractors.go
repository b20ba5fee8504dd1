package quizgen

import (
	"regexp"
	"sort"
	"strings"
)

var wordRE = regexp.MustCompile(`[a-zA-Z][a-zA-Z\-]{3,}`)

var stopwords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "which": true, "have": true,
	"were": true, "their": true, "there": true, "about": true, "into": true, "than": true,
	"then": true, "these": true, "those": true, "when": true, "what": true, "where": true,
	"will": true, "would": true, "could": true, "should": true, "also": true, "been": true,
	"being": true, "they": true, "them": true, "such": true, "more": true, "most": true,
	"other": true, "some": true, "only": true, "over": true, "each": true, "very": true,
	"because": true, "does": true, "your": true,
}

// distractorPool ranks distinctive corpus words by frequency, ties broken
// by first appearance.
type distractorPool struct {
	ranked []string
}

func newDistractorPool(corpus string) *distractorPool {
	counts := map[string]int{}
	first := map[string]int{}
	for i, w := range wordRE.FindAllString(corpus, -1) {
		w = strings.ToLower(strings.Trim(w, "-"))
		if len(w) < 4 || stopwords[w] {
			continue
		}
		if _, ok := first[w]; !ok {
			first[w] = i
		}
		counts[w]++
	}
	ranked := make([]string, 0, len(counts))
	for w := range counts {
		ranked = append(ranked, w)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return first[a] < first[b]
	})
	return &distractorPool{ranked: ranked}
}

// take returns up to n words that do not collide with exclude, compared
// case-insensitively and also skipping words contained in an excluded value.
func (p *distractorPool) take(n int, exclude []string) []string {
	if p == nil || n <= 0 {
		return nil
	}
	ex := make([]string, 0, len(exclude))
	for _, e := range exclude {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			ex = append(ex, e)
		}
	}
	var out []string
	for _, w := range p.ranked {
		if len(out) >= n {
			break
		}
		if clashes(w, ex) {
			continue
		}
		out = append(out, w)
		ex = append(ex, w)
	}
	return out
}

func clashes(w string, exclude []string) bool {
	for _, e := range exclude {
		if w == e || (len(e) <= 40 && strings.Contains(e, w) && len(strings.Fields(e)) <= 3) {
			return true
		}
	}
	return false
}
