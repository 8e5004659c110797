package domain

import "math"

const (
	PendingRatingsPageSize = 10
	AuditPageSize          = 20
)

// PageQuery is 1-based page-number pagination.
type PageQuery struct {
	Page int
	Size int
}

func (p PageQuery) Normalize(defaultSize int) PageQuery {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 || p.Size > 100 {
		p.Size = defaultSize
	}
	// Past this page the offset would overflow; every such page is empty.
	if last := math.MaxInt / p.Size; p.Page > last {
		p.Page = last
	}
	return p
}

func (p PageQuery) Offset() int { return (p.Page - 1) * p.Size }

type Page[T any] struct {
	Items    []T `json:"results"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"count"`
}

// Slice pages an already ordered slice.
func Slice[T any](all []T, p PageQuery) Page[T] {
	out := Page[T]{Page: p.Page, PageSize: p.Size, Total: len(all), Items: []T{}}
	start := p.Offset()
	if start >= len(all) {
		return out
	}
	end := start + p.Size
	if end > len(all) {
		end = len(all)
	}
	out.Items = append(out.Items, all[start:end]...)
	return out
}
