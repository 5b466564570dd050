package pagination

import "errors"

const (
	DefaultSize = 10
	MaxSize     = 200
)

var (
	ErrInvalidPage = errors.New("invalid_page")
	ErrInvalidSize = errors.New("invalid_size")
)

// Pagination is a zero-based page request.
type Pagination struct {
	Page int `form:"page,default=0"`
	Size int `form:"size,default=10"`
}

// Validate enforces page >= 0 and 1 <= size <= MaxSize.
func (p Pagination) Validate() error {
	if p.Page < 0 {
		return ErrInvalidPage
	}
	if p.Size < 1 || p.Size > MaxSize {
		return ErrInvalidSize
	}
	return nil
}

func (p Pagination) Offset() int {
	return p.Page * p.Size
}

func (p Pagination) Limit() int {
	return p.Size
}

// Page is an offset-paginated response envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
}

// NewPage builds the envelope for one page of content.
func NewPage[T any](content []T, total int64, req Pagination) Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    pages,
		Size:          req.Size,
		Number:        req.Page,
	}
}

// Slice paginates an already materialized result set in memory.
func Slice[T any](all []T, req Pagination) Page[T] {
	from := req.Offset()
	if from > len(all) {
		from = len(all)
	}
	to := from + req.Size
	if to > len(all) {
		to = len(all)
	}
	return NewPage(all[from:to], int64(len(all)), req)
}
