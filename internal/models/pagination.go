// internal/models/pagination.go
package models

import "fmt"

type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"pageSize" form:"page_size"`
}

func NewPagination(page, pageSize int) *Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Pagination{
		Page:     page,
		PageSize: pageSize,
	}
}

func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

func (p *Pagination) GetLimit() int {
	return p.PageSize
}

// Page is the list response envelope. Next and Previous carry the query
// string for the adjacent page, or null at the boundaries.
type Page struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Song  `json:"results"`
}

func NewPage(count int, p *Pagination, results []Song) *Page {
	if results == nil {
		results = []Song{}
	}
	page := &Page{
		Count:   count,
		Results: results,
	}
	if p.GetOffset()+len(results) < count {
		page.Next = pageQuery(p.Page+1, p.PageSize)
	}
	if p.Page > 1 {
		page.Previous = pageQuery(p.Page-1, p.PageSize)
	}
	return page
}

func pageQuery(page, pageSize int) *string {
	q := fmt.Sprintf("?page=%d&page_size=%d", page, pageSize)
	return &q
}
