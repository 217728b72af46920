package api

import (
	"net/http/httptest"
	"testing"
)

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/influencers", nil)
	p := ParsePagination(r, 50, 200)
	if p.Page != 1 || p.Limit != 50 || p.Offset != 0 {
		t.Errorf("ParsePagination() = %+v, want page 1 limit 50 offset 0", p)
	}
}

func TestParsePaginationCapsLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/influencers?page=3&limit=9999", nil)
	p := ParsePagination(r, 50, 200)
	if p.Limit != 200 {
		t.Errorf("limit = %d, want 200", p.Limit)
	}
	if p.Offset != 400 {
		t.Errorf("offset = %d, want 400", p.Offset)
	}
}

func TestPaginatedResponseMeta(t *testing.T) {
	p := PaginationParams{Page: 2, Limit: 10, Offset: 10}
	resp := NewPaginatedResponse([]string{"a"}, p, 35)

	if resp.Pagination.TotalPages != 4 {
		t.Errorf("total_pages = %d, want 4", resp.Pagination.TotalPages)
	}
	if !resp.Pagination.HasMore {
		t.Error("has_more should be true on page 2 of 4")
	}
}

func TestPaginatedResponseEmpty(t *testing.T) {
	p := PaginationParams{Page: 1, Limit: 10}
	resp := NewPaginatedResponse([]string{}, p, 0)

	if resp.Pagination.TotalPages != 1 {
		t.Errorf("total_pages = %d, want 1", resp.Pagination.TotalPages)
	}
	if resp.Pagination.HasMore {
		t.Error("has_more should be false with no data")
	}
}
