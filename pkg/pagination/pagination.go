package pagination

import (
	"strconv"
)

// DefaultPageSize is used when the configured page size is not positive.
const DefaultPageSize = 8

// Params holds 1-indexed pagination parameters.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// New normalises page and pageSize: a page below 1 is clamped to 1 and a
// non-positive size falls back to DefaultPageSize.
func New(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// ParsePage converts a raw query value into a page number. Missing,
// non-numeric and non-positive values all yield page 1.
func ParsePage(raw string) int {
	if raw == "" {
		return 1
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// Offset returns the number of records to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of records on a page.
func (p Params) Limit() int {
	return p.PageSize
}

// TotalPages returns ceil(total / pageSize). Zero records means zero pages.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
