package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"musiccatalog/internal/models"
	"musiccatalog/internal/normalize"
)

func TestString(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Mixed case", input: "Bohemian Rhapsody", expected: "bohemian rhapsody"},
		{name: "Already lowercase", input: "night vision", expected: "night vision"},
		{name: "Empty string", input: "", expected: ""},
		{name: "Non-latin preserved", input: "ДДТ", expected: "ддт"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalize.String(tc.input))
		})
	}
}

func TestSlice(t *testing.T) {
	testCases := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "Mixed case", input: []string{"Queen", "David Bowie"}, expected: []string{"queen", "david bowie"}},
		{name: "Empty slice", input: []string{}, expected: []string{}},
		{name: "Nil stays nil", input: nil, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalize.Slice(tc.input))
		})
	}
}

func TestSlice_DoesNotMutateInput(t *testing.T) {
	input := []string{"Queen", "ABBA"}
	normalize.Slice(input)
	assert.Equal(t, []string{"Queen", "ABBA"}, input)
}

func TestSong(t *testing.T) {
	song := &models.Song{
		Title:    "Under Pressure",
		Album:    "Hot Space",
		Year:     1982,
		Artists:  []string{"Queen", "David Bowie"},
		Genre:    []string{"Rock"},
		Language: []string{"English"},
		Tags:     []string{"Classic", "Duet"},
	}

	normalize.Song(song)

	assert.Equal(t, "under pressure", song.Title)
	assert.Equal(t, "hot space", song.Album)
	assert.Equal(t, []string{"queen", "david bowie"}, song.Artists)
	assert.Equal(t, []string{"rock"}, song.Genre)
	assert.Equal(t, []string{"english"}, song.Language)
	assert.Equal(t, []string{"classic", "duet"}, song.Tags)
	assert.Equal(t, 1982, song.Year, "year is untouched")
}
