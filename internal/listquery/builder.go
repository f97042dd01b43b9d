// Package listquery turns flat request parameters into a filtered, sorted and
// paginated SQL query.
//
// Each listing declares a Definition: the filters it understands, the sort
// allow-list and a key column for stable ordering. Build never fails. Unknown
// sort fields fall back to the default, unknown directions to desc, and
// malformed filter values apply no filter.
package listquery

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PerPage is the page size of every listing.
const PerPage = 10

// MaxPage is the largest page number whose offset still fits in an int.
const MaxPage = math.MaxInt/PerPage + 1

const (
	ParamSearch    = "search"
	ParamSort      = "sort"
	ParamDirection = "direction"
	ParamPage      = "page"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// Definition describes one entity listing.
type Definition struct {
	Filters []Filter
	// Sorts maps accepted sort parameter values to SQL expressions.
	Sorts       map[string]string
	DefaultSort string
	// KeyColumn breaks ties so pages never overlap.
	KeyColumn string
}

// Scope is a mandatory equality constraint added by the caller. Scopes are not
// echoed and request parameters cannot lift them.
type Scope struct {
	Column string
	Value  any
}

type builder struct {
	now   time.Time
	conds []string
	args  []any
}

// where appends a condition, numbering its ? placeholders after the ones
// already collected.
func (b *builder) where(cond string, args ...any) {
	var sb strings.Builder
	next := 0
	for _, r := range cond {
		if r == '?' && next < len(args) {
			b.args = append(b.args, args[next])
			next++
			sb.WriteString("$" + strconv.Itoa(len(b.args)))
			continue
		}
		sb.WriteRune(r)
	}
	b.conds = append(b.conds, sb.String())
}

// Build normalises params against the definition. now anchors the relative
// date filters.
func (d Definition) Build(params url.Values, now time.Time, scopes ...Scope) *Query {
	if params == nil {
		params = url.Values{}
	}

	b := &builder{now: now}
	for _, scope := range scopes {
		b.where(scope.Column+" = ?", scope.Value)
	}

	filters := make(map[string]string)
	for _, f := range d.Filters {
		for _, p := range f.params() {
			filters[p] = params.Get(p)
		}
		f.apply(b, params)
	}

	sort := params.Get(ParamSort)
	if _, ok := d.Sorts[sort]; !ok {
		sort = d.DefaultSort
	}
	direction := strings.ToLower(params.Get(ParamDirection))
	if direction != DirectionAsc && direction != DirectionDesc {
		direction = DirectionDesc
	}
	filters[ParamSort] = sort
	filters[ParamDirection] = direction

	orderBy := fmt.Sprintf("%s %s", d.Sorts[sort], strings.ToUpper(direction))
	if d.KeyColumn != "" && d.KeyColumn != d.Sorts[sort] {
		orderBy += fmt.Sprintf(", %s %s", d.KeyColumn, strings.ToUpper(direction))
	}

	page, err := strconv.Atoi(params.Get(ParamPage))
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	return &Query{
		Page:      page,
		PerPage:   PerPage,
		Sort:      sort,
		Direction: direction,
		Filters:   filters,
		conds:     b.conds,
		args:      b.args,
		orderBy:   orderBy,
		params:    params,
	}
}

// Query is a built listing request.
type Query struct {
	Page      int
	PerPage   int
	Sort      string
	Direction string
	// Filters echoes every declared parameter as received, plus the normalised
	// sort and direction.
	Filters map[string]string

	conds   []string
	args    []any
	orderBy string
	params  url.Values
}

// Where returns the WHERE clause (empty when nothing filters) and its arguments.
func (q *Query) Where() (string, []any) {
	args := append([]any(nil), q.args...)
	if len(q.conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(q.conds, " AND "), args
}

// OrderBy returns the ORDER BY expression list.
func (q *Query) OrderBy() string {
	return q.orderBy
}

// Offset is the number of rows before the current page.
func (q *Query) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// SelectSQL assembles the page query for the given select list and FROM clause.
func (q *Query) SelectSQL(columns, from string) (string, []any) {
	where, args := q.Where()
	return fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT %d OFFSET %d",
		columns, from, where, q.orderBy, q.PerPage, q.Offset()), args
}

// CountSQL assembles the total row count query for the FROM clause.
func (q *Query) CountSQL(from string) (string, []any) {
	where, args := q.Where()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", from, where), args
}

// URL links to page n of the same listing, keeping every incoming parameter.
func (q *Query) URL(path string, n int) string {
	values := url.Values{}
	for k, v := range q.params {
		values[k] = append([]string(nil), v...)
	}
	values.Set(ParamPage, strconv.Itoa(n))
	return path + "?" + values.Encode()
}
