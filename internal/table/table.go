// Package table turns schema-less record collections into header/row tables.
//
// Column headers are taken from the first record of a collection, in that
// record's own key order. Records are assumed to share that key set; this is
// not checked. A record missing a header key yields a blank cell marked
// Missing, and keys absent from the first record are never shown.
package table

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/blockedby/npb-dashboard/internal/models"
)

// Cell is one rendered value.
type Cell struct {
	Value   string `json:"value"`
	Missing bool   `json:"missing,omitempty"`
}

// Row is the cells of one record in header order.
type Row []Cell

// Values returns the display strings of the row.
func (r Row) Values() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}

// Table is a rendered record collection.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Build renders a collection. It returns nil for an empty collection.
func Build(coll models.RecordCollection) *Table {
	if len(coll) == 0 {
		return nil
	}

	headers := coll[0].Keys()
	t := &Table{
		Headers: headers,
		Rows:    make([]Row, 0, len(coll)),
	}
	for _, rec := range coll {
		row := make(Row, len(headers))
		for i, h := range headers {
			v, ok := rec.Get(h)
			if !ok {
				row[i] = Cell{Missing: true}
				continue
			}
			row[i] = Cell{Value: FormatValue(v)}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Section is one titled leaderboard table. Table is nil when the category
// has no rankings.
type Section struct {
	Title string `json:"title"`
	Table *Table `json:"table"`
}

// BuildLeaderboard renders each category as its own section. Headers are
// derived per category.
func BuildLeaderboard(cats []models.LeaderboardCategory) []Section {
	if len(cats) == 0 {
		return nil
	}
	sections := make([]Section, 0, len(cats))
	for _, c := range cats {
		sections = append(sections, Section{
			Title: c.Category,
			Table: Build(c.Rankings),
		})
	}
	return sections
}

// FormatValue converts a record value to its display string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case json.RawMessage:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case models.Timestamp:
		return val.JADateTime()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
