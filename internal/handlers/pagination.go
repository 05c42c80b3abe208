package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"pingcrm-backend/internal/inertia"
	"pingcrm-backend/internal/models"
)

// Link is one entry of the pagination bar.
type Link struct {
	URL    *string `json:"url"`
	Label  string  `json:"label"`
	Active bool    `json:"active"`
}

func pageURL(r *http.Request, page int) *string {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u := url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

// onEachSide is the number of pages shown around the current one.
const onEachSide = 3

// pageWindow returns the page numbers of the pagination bar, 0 marking a
// gap. Short listings show every page; longer ones keep the first two, the
// last two and a slider around current.
func pageWindow(current, last int) []int {
	span := func(from, to int) []int {
		out := make([]int, 0, to-from+1)
		for p := from; p <= to; p++ {
			out = append(out, p)
		}
		return out
	}
	if last < onEachSide*2+8 {
		return span(1, last)
	}

	window := onEachSide + 4
	switch {
	case current <= window:
		return append(append(span(1, window+onEachSide), 0), span(last-1, last)...)
	case current > last-window:
		return append(append(span(1, 2), 0), span(last-(window+onEachSide-1), last)...)
	default:
		out := append(span(1, 2), 0)
		out = append(out, span(current-onEachSide, current+onEachSide)...)
		return append(append(out, 0), span(last-1, last)...)
	}
}

// links builds previous, numbered and next links keeping the query string.
func links(r *http.Request, current, last int) []Link {
	pages := pageWindow(current, last)
	out := make([]Link, 0, len(pages)+2)

	prev := Link{Label: "&laquo; Previous"}
	if current > 1 {
		prev.URL = pageURL(r, current-1)
	}
	out = append(out, prev)

	for _, p := range pages {
		if p == 0 {
			out = append(out, Link{Label: "..."})
			continue
		}
		out = append(out, Link{URL: pageURL(r, p), Label: strconv.Itoa(p), Active: p == current})
	}

	next := Link{Label: "Next &raquo;"}
	if current < last {
		next.URL = pageURL(r, current+1)
	}
	return append(out, next)
}

// paginate shapes a page the way the index components expect.
func paginate[T any](r *http.Request, p models.Page[T], row func(T) inertia.Props) inertia.Props {
	data := make([]inertia.Props, 0, len(p.Items))
	for _, it := range p.Items {
		data = append(data, row(it))
	}
	return inertia.Props{
		"data":         data,
		"links":        links(r, p.Page, p.LastPage()),
		"current_page": p.Page,
		"last_page":    p.LastPage(),
		"per_page":     p.PerPage,
		"total":        p.Total,
	}
}
