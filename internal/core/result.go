package core

// Link is one classified social link.
type Link struct {
	URL      string `json:"url"`
	Username string `json:"username"`
}

// Row is one line of the rendered table.
type Row struct {
	Platform Platform `json:"platform"`
	Username string   `json:"username"`
	URL      string   `json:"url"`
}

// Result groups links by platform in discovery order.
// The zero value is not usable; create one with NewResult.
type Result struct {
	buckets map[Platform][]Link
}

// NewResult returns an empty Result.
func NewResult() *Result {
	return &Result{buckets: make(map[Platform][]Link, len(platformOrder))}
}

func (r *Result) add(p Platform, l Link) {
	r.buckets[p] = append(r.buckets[p], l)
}

// Links returns a copy of the links classified under p.
func (r *Result) Links(p Platform) []Link {
	src := r.buckets[p]
	out := make([]Link, len(src))
	copy(out, src)
	return out
}

// Count returns the number of links under p.
func (r *Result) Count(p Platform) int {
	return len(r.buckets[p])
}

// Counts returns the number of links per platform, including zero counts.
func (r *Result) Counts() map[Platform]int {
	out := make(map[Platform]int, len(platformOrder))
	for _, p := range platformOrder {
		out[p] = len(r.buckets[p])
	}
	return out
}

// Total returns the number of links across all platforms.
func (r *Result) Total() int {
	n := 0
	for _, links := range r.buckets {
		n += len(links)
	}
	return n
}

// Platforms returns the platforms holding at least one link, in platform order.
func (r *Result) Platforms() []Platform {
	var out []Platform
	for _, p := range platformOrder {
		if len(r.buckets[p]) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Rows flattens the result into table rows, grouped by platform.
func (r *Result) Rows() []Row {
	rows := make([]Row, 0, r.Total())
	for _, p := range platformOrder {
		for _, l := range r.buckets[p] {
			rows = append(rows, Row{Platform: p, Username: l.Username, URL: l.URL})
		}
	}
	return rows
}

// ResultFromRows rebuilds a Result from table rows.
// Row order within each platform is preserved; rows are not re-validated, so a
// hand-edited table exports exactly as shown.
func ResultFromRows(rows []Row) *Result {
	res := NewResult()
	for _, row := range rows {
		if !row.Platform.valid() {
			continue
		}
		res.add(row.Platform, Link{URL: row.URL, Username: row.Username})
	}
	return res
}
