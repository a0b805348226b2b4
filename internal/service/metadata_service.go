// internal/service/metadata_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/models"
	"musiccatalog/internal/storage"
)

// MetadataService derives the single Metadata summary row from the full song
// table. The rebuild is a complete recomputation, O(total songs); it runs
// inside the same transaction as the triggering mutation so readers never see
// a summary for a half-applied catalog.
type MetadataService struct {
	songs    storage.SongStorage
	metadata storage.MetadataStorage
}

func NewMetadataService(songs storage.SongStorage, metadata storage.MetadataStorage) *MetadataService {
	return &MetadataService{
		songs:    songs,
		metadata: metadata,
	}
}

func (s *MetadataService) Get(ctx context.Context) (*models.Metadata, error) {
	meta, err := s.metadata.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoMetadata) {
			return nil, storage.ErrNoMetadata
		}
		utils.Logger.Error("MetadataService.Get - metadata.Get failed", zap.Error(err))
		return nil, fmt.Errorf("MetadataService.Get - metadata.Get failed: %w", err)
	}
	return meta, nil
}

// Rebuild recomputes the summary from every persisted song and overwrites the
// sole metadata row, creating it if absent.
func (s *MetadataService) Rebuild(ctx context.Context, tx pgx.Tx) (*models.Metadata, error) {
	songs, err := s.songs.ListAll(ctx, tx)
	if err != nil {
		utils.Logger.Error("MetadataService.Rebuild - songs.ListAll failed", zap.Error(err))
		return nil, fmt.Errorf("MetadataService.Rebuild - songs.ListAll failed: %w", err)
	}

	meta := Summarize(songs)

	saved, err := s.metadata.Upsert(ctx, meta, tx)
	if err != nil {
		utils.Logger.Error("MetadataService.Rebuild - metadata.Upsert failed", zap.Error(err))
		return nil, fmt.Errorf("MetadataService.Rebuild - metadata.Upsert failed: %w", err)
	}

	utils.Logger.Debug("MetadataService.Rebuild - metadata rebuilt",
		zap.Int("songs", len(songs)), zap.Int("albums", len(saved.Album)), zap.Int("artists", len(saved.Artists)))
	return saved, nil
}

// Summarize computes the distinct-value summary for a set of songs: distinct
// albums and years, set union of artists, genres, languages and tags. Output
// lists are sorted so equal catalogs produce equal summaries.
func Summarize(songs []models.Song) *models.Metadata {
	albums := make(map[string]struct{})
	artists := make(map[string]struct{})
	genres := make(map[string]struct{})
	languages := make(map[string]struct{})
	tags := make(map[string]struct{})
	years := make(map[int]struct{})

	for _, song := range songs {
		albums[song.Album] = struct{}{}
		years[song.Year] = struct{}{}
		collect(artists, song.Artists)
		collect(genres, song.Genre)
		collect(languages, song.Language)
		collect(tags, song.Tags)
	}

	meta := &models.Metadata{
		Album:    maps.Keys(albums),
		Artists:  maps.Keys(artists),
		Genre:    maps.Keys(genres),
		Language: maps.Keys(languages),
		Tags:     maps.Keys(tags),
		Years:    maps.Keys(years),
	}
	slices.Sort(meta.Album)
	slices.Sort(meta.Artists)
	slices.Sort(meta.Genre)
	slices.Sort(meta.Language)
	slices.Sort(meta.Tags)
	slices.Sort(meta.Years)
	return meta
}

func collect(set map[string]struct{}, values []string) {
	for _, v := range values {
		set[v] = struct{}{}
	}
}
