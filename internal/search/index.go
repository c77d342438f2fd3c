// Package search ranks vault items against a typed query.
package search

import (
	"sort"
	"strings"

	"bwtui/internal/model"

	"github.com/sahilm/fuzzy"
)

type SortMode int

const (
	SortDefault SortMode = iota
	SortDate
)

func (s SortMode) String() string {
	if s == SortDate {
		return "date"
	}
	return "default"
}

// Toggle flips between the default (relevance/name) and date orderings.
func (s SortMode) Toggle() SortMode {
	if s == SortDate {
		return SortDefault
	}
	return SortDate
}

// Result pairs an item with its rank. Score is 0 for unranked (blank query) results.
type Result struct {
	Item  *model.Item
	Score int
}

// substringBonus lifts exact substring hits above any subsequence-only hit.
const substringBonus = 1 << 20

// Index is a derived, in-memory projection of the item store.
type Index struct {
	items []model.Item
	texts []string
	names []string
	// byName holds item positions ordered by case-insensitive name.
	byName []int
	rank   []int
}

func New(items []model.Item) *Index {
	ix := &Index{}
	ix.Rebuild(items)
	return ix
}

func (ix *Index) Rebuild(items []model.Item) {
	ix.items = make([]model.Item, len(items))
	copy(ix.items, items)
	ix.texts = make([]string, len(items))
	ix.names = make([]string, len(items))
	for i, it := range ix.items {
		ix.texts[i] = SearchText(it)
		ix.names[i] = strings.ToLower(it.Name)
	}
	ix.byName = make([]int, len(items))
	for i := range ix.byName {
		ix.byName[i] = i
	}
	sort.SliceStable(ix.byName, func(a, b int) bool {
		return ix.names[ix.byName[a]] < ix.names[ix.byName[b]]
	})
	ix.rank = make([]int, len(items))
	for pos, i := range ix.byName {
		ix.rank[i] = pos
	}
}

func (ix *Index) Len() int { return len(ix.items) }

// SearchText is the lowercased name plus all URIs, space-joined.
func SearchText(it model.Item) string {
	parts := append([]string{it.Name}, it.URIs()...)
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}

// Search returns the items matching query in the requested order.
func (ix *Index) Search(query string, mode SortMode) []Result {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []Result
	if q == "" {
		out = make([]Result, 0, len(ix.byName))
		for _, i := range ix.byName {
			out = append(out, Result{Item: &ix.items[i]})
		}
	} else {
		out = ix.match(q)
	}

	if mode == SortDate {
		sort.SliceStable(out, func(a, b int) bool {
			da, db := out[a].Item.RevisionDate, out[b].Item.RevisionDate
			if (da == "") != (db == "") {
				return db == ""
			}
			return da > db
		})
	}
	return out
}

func (ix *Index) match(q string) []Result {
	matches := fuzzy.FindNoSort(q, ix.texts)
	type scored struct {
		idx   int
		score int
	}
	hits := make([]scored, 0, len(matches))
	seen := make(map[int]bool, len(matches))
	for _, m := range matches {
		score := m.Score
		if strings.Contains(ix.texts[m.Index], q) {
			score += substringBonus
			if strings.HasPrefix(ix.names[m.Index], q) {
				score += substringBonus / 2
			}
		}
		hits = append(hits, scored{idx: m.Index, score: score})
		seen[m.Index] = true
	}
	// The fuzzy matcher skips some substring hits that contain separators in the query;
	// make sure every literal substring match is present.
	for i, text := range ix.texts {
		if !seen[i] && strings.Contains(text, q) {
			hits = append(hits, scored{idx: i, score: substringBonus})
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return ix.rank[hits[a].idx] < ix.rank[hits[b].idx]
	})
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, Result{Item: &ix.items[h.idx], Score: h.score})
	}
	return out
}
