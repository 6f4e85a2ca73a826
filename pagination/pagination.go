// Package pagination implements page-number pagination with a
// client-overridable page size, rendered as the envelope
// {count, next, previous, results} with absolute page URLs.
package pagination

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultPageSize is used when the client does not pass ?limit=.
	DefaultPageSize = 6
	// MaxPageSize caps the client-supplied limit.
	MaxPageSize = 1000
)

// Params are the parsed pagination inputs of one request.
type Params struct {
	Page  int
	Limit int
}

// ParseParams reads ?page= and ?limit= from the request. Missing or
// unusable values fall back to defaults rather than erroring: pagination
// inputs are never a reason to reject a list request.
func ParseParams(r *http.Request) Params {
	p := Params{Page: 1, Limit: DefaultPageSize}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			p.Limit = limit
		}
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the SQL offset for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is the paginated response envelope.
type Page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// NewPage builds the envelope around one page of results. requestURL is the
// absolute URL of the current request; next/previous links are derived from
// it by swapping the page parameter.
func NewPage(results any, count int, p Params, requestURL string) Page {
	page := Page{Count: count, Results: results}

	lastPage := (count + p.Limit - 1) / p.Limit
	if p.Page < lastPage {
		if u := pageURL(requestURL, p.Page+1); u != "" {
			page.Next = &u
		}
	}
	if p.Page > 1 {
		if u := pageURL(requestURL, p.Page-1); u != "" {
			page.Previous = &u
		}
	}
	return page
}

// pageURL rewrites the page query parameter of requestURL.
func pageURL(requestURL string, page int) string {
	u, err := url.Parse(requestURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RequestURL reconstructs the absolute URL of the request using baseURL as
// the external origin. The router only sees the path and query; the
// configured base keeps links correct behind a proxy.
func RequestURL(baseURL string, r *http.Request) string {
	if r.URL.RawQuery == "" {
		return fmt.Sprintf("%s%s", baseURL, r.URL.Path)
	}
	return fmt.Sprintf("%s%s?%s", baseURL, r.URL.Path, r.URL.RawQuery)
}
