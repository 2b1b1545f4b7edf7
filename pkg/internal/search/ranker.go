package search

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Field is one indexed text field of a document.
type Field struct {
	Text   string
	Weight float64
}

// Tokenize splits text into lowercase runs of letters and digits.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Score is the relevance of a document to the query, zero when no term hits any field.
// Each field adds weight × (0.5 + 0.5 × occurrences / tokens) for every term it contains.
func Score(query string, fields ...Field) float64 {
	terms := lo.Uniq(Tokenize(query))
	if len(terms) == 0 {
		return 0
	}

	var score float64
	for _, field := range fields {
		tokens := Tokenize(field.Text)
		if len(tokens) == 0 {
			continue
		}
		counts := lo.CountValues(tokens)
		for _, term := range terms {
			if hits := counts[term]; hits > 0 {
				score += field.Weight * (0.5 + 0.5*float64(hits)/float64(len(tokens)))
			}
		}
	}
	return score
}

func anyTermCondition(columns []string, terms []string) (string, []any) {
	var conds []string
	var args []any
	for _, column := range columns {
		for _, term := range terms {
			conds = append(conds, fmt.Sprintf("LOWER(%s) LIKE ?", column))
			args = append(args, "%"+term+"%")
		}
	}
	if len(conds) == 0 {
		return "1 = 0", nil
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// MatchAnyTerm keeps rows whose columns contain any of the terms. Scoring happens in process.
func MatchAnyTerm(columns []string, terms []string) func(tx *gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		cond, args := anyTermCondition(columns, terms)
		return tx.Where(cond, args...)
	}
}

type ranked[R any] struct {
	row   R
	score float64
	at    time.Time
}

// Rank orders rows by score descending then recency, keeping those accepted by keep.
func Rank[R any](rows []R, score func(R) float64, recency func(R) time.Time, keep func(R, float64) bool) []R {
	items := make([]ranked[R], 0, len(rows))
	for _, row := range rows {
		s := score(row)
		if keep != nil && !keep(row, s) {
			continue
		}
		items = append(items, ranked[R]{row: row, score: s, at: recency(row)})
	}

	slices.SortStableFunc(items, func(a, b ranked[R]) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return b.at.Compare(a.at)
	})

	return lo.Map(items, func(item ranked[R], _ int) R { return item.row })
}

// HasScore keeps rows matching at least one term.
func HasScore[R any](_ R, score float64) bool {
	return score > 0
}
