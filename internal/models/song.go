// internal/models/song.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Song struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Album     string    `json:"album"`
	Year      int       `json:"year"`
	Artists   []string  `json:"artists"`
	Genre     []string  `json:"genre"`
	Language  []string  `json:"language"`
	Tags      []string  `json:"tags"`
	Link      *string   `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SongPayload struct {
	Title    string   `json:"title"`
	Album    string   `json:"album"`
	Year     int      `json:"year"`
	Artists  []string `json:"artists"`
	Genre    []string `json:"genre"`
	Language []string `json:"language"`
	Tags     []string `json:"tags"`
	Link     *string  `json:"link"`
}

// SongFilter holds OR-combined candidate values per field. Album and Year
// match exactly (album case-insensitive), the list fields match any element
// containing the candidate as a substring.
type SongFilter struct {
	Album    []string `json:"album"`
	Artists  []string `json:"artists"`
	Genre    []string `json:"genre"`
	Language []string `json:"language"`
	Tags     []string `json:"tags"`
	Year     []int    `json:"year"`
}

func (f *SongFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Album) == 0 && len(f.Artists) == 0 && len(f.Genre) == 0 &&
		len(f.Language) == 0 && len(f.Tags) == 0 && len(f.Year) == 0
}

type FilterRequest struct {
	Filter SongFilter `json:"filter"`
}

// BulkCreateResult reports what happened to every submitted item instead of
// dropping failures silently.
type BulkCreateResult struct {
	Created []Song            `json:"created"`
	Skipped []BulkSkippedItem `json:"skipped"`
}

type BulkSkippedItem struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}
