package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"musiccatalog/internal/models"
)

func TestNewPagination_Defaults(t *testing.T) {
	testCases := []struct {
		name             string
		page             int
		pageSize         int
		expectedPage     int
		expectedPageSize int
	}{
		{name: "Zero values fall back to defaults", page: 0, pageSize: 0, expectedPage: 1, expectedPageSize: 10},
		{name: "Negative values fall back to defaults", page: -3, pageSize: -1, expectedPage: 1, expectedPageSize: 10},
		{name: "Explicit values kept", page: 4, pageSize: 25, expectedPage: 4, expectedPageSize: 25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := models.NewPagination(tc.page, tc.pageSize)
			assert.Equal(t, tc.expectedPage, p.Page)
			assert.Equal(t, tc.expectedPageSize, p.PageSize)
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	p := models.NewPagination(3, 10)
	assert.Equal(t, 20, p.GetOffset())
	assert.Equal(t, 10, p.GetLimit())
}

func TestNewPage_Envelope(t *testing.T) {
	makeSongs := func(n int) []models.Song {
		songs := make([]models.Song, n)
		return songs
	}

	testCases := []struct {
		name             string
		count            int
		page             int
		pageSize         int
		results          []models.Song
		expectedNext     *string
		expectedPrevious *string
	}{
		{
			name: "First of three pages", count: 25, page: 1, pageSize: 10, results: makeSongs(10),
			expectedNext: strPtr("?page=2&page_size=10"), expectedPrevious: nil,
		},
		{
			name: "Middle page", count: 25, page: 2, pageSize: 10, results: makeSongs(10),
			expectedNext: strPtr("?page=3&page_size=10"), expectedPrevious: strPtr("?page=1&page_size=10"),
		},
		{
			name: "Last short page", count: 25, page: 3, pageSize: 10, results: makeSongs(5),
			expectedNext: nil, expectedPrevious: strPtr("?page=2&page_size=10"),
		},
		{
			name: "Single page catalog", count: 7, page: 1, pageSize: 10, results: makeSongs(7),
			expectedNext: nil, expectedPrevious: nil,
		},
		{
			name: "Exact page boundary", count: 20, page: 2, pageSize: 10, results: makeSongs(10),
			expectedNext: nil, expectedPrevious: strPtr("?page=1&page_size=10"),
		},
		{
			name: "Empty catalog", count: 0, page: 1, pageSize: 10, results: nil,
			expectedNext: nil, expectedPrevious: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page := models.NewPage(tc.count, models.NewPagination(tc.page, tc.pageSize), tc.results)

			assert.Equal(t, tc.count, page.Count)
			assert.Equal(t, tc.expectedNext, page.Next)
			assert.Equal(t, tc.expectedPrevious, page.Previous)
			assert.NotNil(t, page.Results, "results is never null")
		})
	}
}

func TestSongFilter_IsEmpty(t *testing.T) {
	var nilFilter *models.SongFilter
	assert.True(t, nilFilter.IsEmpty())
	assert.True(t, (&models.SongFilter{}).IsEmpty())
	assert.False(t, (&models.SongFilter{Year: []int{1982}}).IsEmpty())
	assert.False(t, (&models.SongFilter{Artists: []string{"queen"}}).IsEmpty())
}

func strPtr(s string) *string {
	return &s
}
