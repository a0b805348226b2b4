// internal/normalize/normalize.go
package normalize

import (
	"strings"

	"musiccatalog/internal/models"
)

// String returns the lowercase form of s.
func String(s string) string {
	return strings.ToLower(s)
}

// Slice returns a new slice with every element lowercased. Order and length
// are preserved; a nil slice stays nil.
func Slice(xs []string) []string {
	if xs == nil {
		return nil
	}
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = strings.ToLower(x)
	}
	return out
}

// Song lowercases every text and list field of a song in place. Applied
// before each catalog write so stored values compare case-insensitively.
func Song(song *models.Song) {
	song.Title = String(song.Title)
	song.Album = String(song.Album)
	song.Artists = Slice(song.Artists)
	song.Genre = Slice(song.Genre)
	song.Language = Slice(song.Language)
	song.Tags = Slice(song.Tags)
}
