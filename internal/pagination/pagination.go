// Package pagination implements offset pagination: request normalization,
// skip computation, and the derived result metadata.
package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Request describes one bounded list fetch.
type Request struct {
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
	Where   map[string]any `json:"-"`
	OrderBy string         `json:"-"`
	Include []string       `json:"-"`
}

// Normalize replaces out-of-range page/limit values with the defaults.
// Values below 1 are normalized rather than rejected.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	return r
}

// Skip returns the offset for the normalized request.
func (r Request) Skip() int {
	return (r.Page - 1) * r.Limit
}

// Result is one page of documents plus metadata. TotalPages, HasNextPage and
// HasPrevPage are pure functions of TotalDocs, Page and Limit; they are never
// stored independently.
type Result[T any] struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalDocs   int  `json:"totalDocs"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Docs        []T  `json:"docs"`
}

// NewResult derives the metadata for a page of docs. The request must
// already be normalized.
func NewResult[T any](req Request, totalDocs int, docs []T) Result[T] {
	totalPages := (totalDocs + req.Limit - 1) / req.Limit
	if docs == nil {
		docs = []T{}
	}
	return Result[T]{
		Page:        req.Page,
		Limit:       req.Limit,
		TotalDocs:   totalDocs,
		TotalPages:  totalPages,
		HasNextPage: req.Page < totalPages,
		HasPrevPage: req.Page > 1,
		Docs:        docs,
	}
}
