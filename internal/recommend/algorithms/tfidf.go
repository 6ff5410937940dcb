// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package algorithms

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/recommend"
)

// tokenPattern matches runs of two or more word characters, Unicode aware.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into terms of at least two word
// characters. Text is NFC-normalised first so decomposed Hangul and accented
// Latin compare equal to their composed forms.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(norm.NFC.String(text)), -1)
}

// term is one non-zero entry of a sparse document vector.
type term struct {
	id     int
	weight float64
}

// ContentIndex is a TF-IDF index over place documents, one document per
// place, built once per catalog snapshot and read-only afterwards.
//
// Weighting:
//
//	tf(t, d)  = raw count of t in d
//	idf(t)    = ln((1 + n) / (1 + df(t))) + 1
//	w(t, d)   = tf * idf, then each row is L2-normalised
//
// Cosine similarity between two rows is therefore their dot product.
type ContentIndex struct {
	categories []string // per document
	rows       [][]term // sorted by term id
	first      map[string]int
	vocab      map[string]int
}

// BuildContentIndex indexes places in catalog order. The document text of
// a place is its category followed by its tags.
func BuildContentIndex(places []catalog.Place) *ContentIndex {
	idx := &ContentIndex{
		categories: make([]string, len(places)),
		rows:       make([][]term, len(places)),
		first:      make(map[string]int),
		vocab:      make(map[string]int),
	}

	counts := make([]map[int]int, len(places))
	var df []int
	for i := range places {
		p := &places[i]
		idx.categories[i] = p.Category
		if _, ok := idx.first[p.Category]; !ok {
			idx.first[p.Category] = i
		}

		tf := make(map[int]int)
		for _, tok := range Tokenize(p.Text()) {
			id, ok := idx.vocab[tok]
			if !ok {
				id = len(idx.vocab)
				idx.vocab[tok] = id
				df = append(df, 0)
			}
			if tf[id] == 0 {
				df[id]++
			}
			tf[id]++
		}
		counts[i] = tf
	}

	n := float64(len(places))
	idf := make([]float64, len(df))
	for id, d := range df {
		idf[id] = math.Log((1+n)/(1+float64(d))) + 1
	}

	for i, tf := range counts {
		row := make([]term, 0, len(tf))
		var norm2 float64
		for id, c := range tf {
			w := float64(c) * idf[id]
			row = append(row, term{id: id, weight: w})
			norm2 += w * w
		}
		if norm2 > 0 {
			l2 := math.Sqrt(norm2)
			for j := range row {
				row[j].weight /= l2
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].id < row[b].id })
		idx.rows[i] = row
	}

	return idx
}

// Len returns the number of indexed documents.
func (x *ContentIndex) Len() int {
	return len(x.rows)
}

// VocabularySize returns the number of distinct terms.
func (x *ContentIndex) VocabularySize() int {
	return len(x.vocab)
}

// Categories returns the indexed categories in first-seen order.
func (x *ContentIndex) Categories() []string {
	out := make([]string, 0, len(x.first))
	seen := make(map[string]struct{}, len(x.first))
	for _, c := range x.categories {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Similarity returns the cosine similarity of documents i and j.
func (x *ContentIndex) Similarity(i, j int) float64 {
	return dot(x.rows[i], x.rows[j])
}

// Neighbors returns up to k categories similar to category.
//
// The first document of category is compared against every document.
// Documents are ranked by descending similarity, ties to the lower index.
// Documents of the same category are skipped, the top k kept, and their
// categories deduplicated in rank order. The query category is never part
// of the result.
func (x *ContentIndex) Neighbors(category string, k int) ([]string, error) {
	q, ok := x.first[category]
	if !ok {
		return nil, &recommend.UnknownCategoryError{Category: category}
	}
	if k <= 0 {
		return []string{}, nil
	}

	ranked := make([]neighbor, 0, len(x.rows))
	for i := range x.rows {
		if i == q || x.categories[i] == category {
			continue
		}
		ranked = append(ranked, neighbor{ID: i, Similarity: dot(x.rows[q], x.rows[i])})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Similarity > ranked[b].Similarity
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]string, 0, len(ranked))
	seen := make(map[string]struct{}, len(ranked))
	for _, nb := range ranked {
		c := x.categories[nb.ID]
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// dot multiplies two sparse rows sorted by term id.
func dot(a, b []term) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].id == b[j].id:
			sum += a[i].weight * b[j].weight
			i++
			j++
		case a[i].id < b[j].id:
			i++
		default:
			j++
		}
	}
	return sum
}
