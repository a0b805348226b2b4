// internal/models/metadata.go
package models

import "github.com/google/uuid"

// Metadata is the single derived summary row over the whole song catalog.
type Metadata struct {
	ID       uuid.UUID `json:"id"`
	Album    []string  `json:"album"`
	Artists  []string  `json:"artists"`
	Genre    []string  `json:"genre"`
	Language []string  `json:"language"`
	Tags     []string  `json:"tags"`
	Years    []int     `json:"years"`
}
