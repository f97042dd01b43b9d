package listquery

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Filter is one declarative filter of a list definition. The set of kinds is
// closed: Search, Equals, TriState, Range and DueBucket.
type Filter interface {
	// params lists the request parameters the filter reads, for echoing.
	params() []string
	apply(b *builder, values url.Values)
}

// Search matches rows where any of Columns contains the parameter value,
// case-insensitively.
type Search struct {
	Param   string
	Columns []string
}

func (f Search) params() []string { return []string{f.Param} }

func (f Search) apply(b *builder, values url.Values) {
	term := strings.TrimSpace(values.Get(f.Param))
	if term == "" || len(f.Columns) == 0 {
		return
	}

	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, len(f.Columns))
	args := make([]any, len(f.Columns))
	for i, column := range f.Columns {
		parts[i] = column + " ILIKE ?"
		args[i] = pattern
	}
	b.where("("+strings.Join(parts, " OR ")+")", args...)
}

// Equals restricts Column to the exact parameter value. Integer columns ignore
// values that do not parse as integers.
type Equals struct {
	Param   string
	Column  string
	Integer bool
}

func (f Equals) params() []string { return []string{f.Param} }

func (f Equals) apply(b *builder, values url.Values) {
	value := strings.TrimSpace(values.Get(f.Param))
	if value == "" {
		return
	}
	if !f.Integer {
		b.where(f.Column+" = ?", value)
		return
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return
	}
	b.where(f.Column+" = ?", n)
}

// TriState filters on whether a nullable column is set: "true" means NOT NULL,
// "false" means NULL, anything else applies nothing.
type TriState struct {
	Param  string
	Column string
}

func (f TriState) params() []string { return []string{f.Param} }

func (f TriState) apply(b *builder, values url.Values) {
	switch values.Get(f.Param) {
	case "true":
		b.where(f.Column + " IS NOT NULL")
	case "false":
		b.where(f.Column + " IS NULL")
	}
}

// DateLayout is the calendar date format accepted by Range bounds.
const DateLayout = "2006-01-02"

// Range bounds dates inclusively: FromParam against Column, ToParam against
// ToColumn (Column when empty). Either bound may be absent; a bound that is not
// a YYYY-MM-DD date is ignored.
type Range struct {
	FromParam string
	ToParam   string
	Column    string
	ToColumn  string
}

func (f Range) params() []string { return []string{f.FromParam, f.ToParam} }

func (f Range) apply(b *builder, values url.Values) {
	if from, err := time.Parse(DateLayout, values.Get(f.FromParam)); err == nil {
		b.where(f.Column+" >= ?", from)
	}
	if to, err := time.Parse(DateLayout, values.Get(f.ToParam)); err == nil {
		column := f.ToColumn
		if column == "" {
			column = f.Column
		}
		b.where(column+" <= ?", to)
	}
}

// Due date buckets understood by DueBucket.
const (
	BucketOverdue = "overdue"
	BucketToday   = "today"
	BucketWeek    = "week"
	BucketMonth   = "month"
)

// DueBucket filters a due date column into a named window relative to now.
// Overdue always leaves out rows whose StatusColumn equals CompletedStatus.
type DueBucket struct {
	Param           string
	Column          string
	StatusColumn    string
	CompletedStatus string
}

func (f DueBucket) params() []string { return []string{f.Param} }

func (f DueBucket) apply(b *builder, values url.Values) {
	now := b.now
	switch values.Get(f.Param) {
	case BucketOverdue:
		b.where(f.Column+" < ? AND "+f.StatusColumn+" <> ?", now, f.CompletedStatus)
	case BucketToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		b.where(f.Column+" >= ? AND "+f.Column+" < ?", start, start.AddDate(0, 0, 1))
	case BucketWeek:
		b.where(f.Column+" BETWEEN ? AND ?", now, now.AddDate(0, 0, 7))
	case BucketMonth:
		b.where(f.Column+" BETWEEN ? AND ?", now, now.AddDate(0, 0, 30))
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards so the term is matched literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
