package listquery

// Page is one page of a listing together with its pagination metadata and the
// echoed filter state.
type Page[T any] struct {
	Data         []T               `json:"data"`
	CurrentPage  int               `json:"current_page"`
	PerPage      int               `json:"per_page"`
	Total        int               `json:"total"`
	LastPage     int               `json:"last_page"`
	From         *int              `json:"from"`
	To           *int              `json:"to"`
	Path         string            `json:"path"`
	FirstPageURL string            `json:"first_page_url"`
	LastPageURL  string            `json:"last_page_url"`
	PrevPageURL  *string           `json:"prev_page_url"`
	NextPageURL  *string           `json:"next_page_url"`
	Filters      map[string]string `json:"filters"`
}

// NewPage wraps data, the rows of q's current page out of total, for path.
func NewPage[T any](q *Query, path string, data []T, total int) Page[T] {
	if data == nil {
		data = []T{}
	}

	lastPage := (total + q.PerPage - 1) / q.PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	page := Page[T]{
		Data:         data,
		CurrentPage:  q.Page,
		PerPage:      q.PerPage,
		Total:        total,
		LastPage:     lastPage,
		Path:         path,
		FirstPageURL: q.URL(path, 1),
		LastPageURL:  q.URL(path, lastPage),
		Filters:      q.Filters,
	}

	if len(data) > 0 {
		from := q.Offset() + 1
		to := q.Offset() + len(data)
		page.From, page.To = &from, &to
	}
	if q.Page > 1 {
		prev := q.URL(path, min(q.Page-1, lastPage))
		page.PrevPageURL = &prev
	}
	if q.Page < lastPage {
		next := q.URL(path, q.Page+1)
		page.NextPageURL = &next
	}
	return page
}
