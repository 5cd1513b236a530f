package storage

import (
	"strconv"
	"strings"

	"github.com/pfrederiksen/bizevents/internal/event"
)

// Sortable lists the columns List may order by.
var Sortable = map[string]bool{
	"id":             true,
	"title":          true,
	"start_datetime": true,
	"end_datetime":   true,
	"organizer":      true,
	"industry":       true,
	"market":         true,
	"created_at":     true,
	"updated_at":     true,
}

// Query filters and orders List results. The zero value lists every event
// by start ascending regardless of validity.
type Query struct {
	// Search matches the title case-insensitively.
	Search      string
	Markets     []string
	Industries  []string
	Organizers  []string
	Valid       *bool
	StartAfter  event.Timestamp
	StartBefore event.Timestamp
	Sort        string
	Descending  bool
	Limit       int
	Offset      int
}

func (q Query) build(d dialect) (string, []any) {
	var where []string
	var args []any

	if q.Search != "" {
		where = append(where, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}
	for _, in := range []struct {
		column string
		values []string
	}{
		{"market", q.Markets},
		{"industry", q.Industries},
		{"organizer", q.Organizers},
	} {
		if len(in.values) == 0 {
			continue
		}
		where = append(where, in.column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(in.values)), ", ")+")")
		for _, v := range in.values {
			args = append(args, v)
		}
	}
	// Stored timestamps compare as text on their wall clock.
	if !q.StartAfter.IsZero() {
		where = append(where, "start_datetime >= ?")
		args = append(args, event.Naive(q.StartAfter.Time).String())
	}
	if !q.StartBefore.IsZero() {
		where = append(where, "start_datetime <= ?")
		args = append(args, event.Naive(q.StartBefore.Time).String())
	}
	if q.Valid != nil {
		where = append(where, "valid = ?")
		args = append(args, *q.Valid)
	}

	var b strings.Builder
	b.WriteString("SELECT " + columns + " FROM events")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	sortBy := q.Sort
	if !Sortable[sortBy] {
		sortBy = "start_datetime"
	}
	order := "ASC"
	if q.Descending {
		order = "DESC"
	}
	b.WriteString(" ORDER BY " + sortBy + " " + order + ", id " + order)

	switch {
	case q.Limit > 0:
		b.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	case q.Offset > 0 && d == sqlite:
		b.WriteString(" LIMIT -1")
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET " + strconv.Itoa(q.Offset))
	}

	return d.rebind(b.String()), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
