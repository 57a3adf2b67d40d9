package pagination

import "strconv"

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Pageable is a zero-based page request.
type Pageable struct {
	Page int
	Size int
}

func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// FromQuery parses page/size query parameters, clamping to sane bounds.
func FromQuery(pageStr, sizeStr string) Pageable {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 || size > MaxSize {
		size = DefaultSize
	}
	return Pageable{Page: page, Size: size}
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, p Pageable, total int64) Page[T] {
	totalPages := 0
	if p.Size > 0 {
		totalPages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
