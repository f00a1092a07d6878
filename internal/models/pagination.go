package models

import "math"

// StatusFilter narrows a message query to one status, or none
type StatusFilter string

// FilterAll disables status filtering
const FilterAll StatusFilter = "all"

// ParseStatusFilter maps raw input to a filter; unknown values mean all
func ParseStatusFilter(raw string) StatusFilter {
	if s := Status(raw); s.Valid() {
		return StatusFilter(s)
	}
	return FilterAll
}

// Status returns the status being filtered on and whether the filter is active
func (f StatusFilter) Status() (Status, bool) {
	if s := Status(f); s.Valid() {
		return s, true
	}
	return "", false
}

// PageRequest describes one page of the inbox
type PageRequest struct {
	Page      int
	PageSize  int
	Status    StatusFilter
	LastDocID string
}

// Offset returns the number of records preceding the requested page.
// It saturates at math.MaxInt instead of wrapping for huge page numbers.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

// Pagination is the metadata returned alongside a page of messages
type Pagination struct {
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalCount  int64  `json:"totalCount"`
	PageSize    int    `json:"pageSize"`
	HasNext     bool   `json:"hasNext"`
	HasPrevious bool   `json:"hasPrevious"`
	LastDocID   string `json:"lastDocId,omitempty"`
	UnreadCount int64  `json:"unreadCount"`
}

// PageResponse is one page of messages plus its pagination metadata
type PageResponse struct {
	Messages   []Message  `json:"messages"`
	Pagination Pagination `json:"pagination"`
}
