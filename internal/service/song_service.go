// internal/service/song_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/models"
	"musiccatalog/internal/normalize"
	"musiccatalog/internal/storage"
)

var (
	ErrDuplicateSong = errors.New("duplicate song")
	ErrValidation    = errors.New("invalid payload")
)

type SongService struct {
	storage  storage.SongStorage
	metadata *MetadataService
}

func NewSongService(storage storage.SongStorage, metadata *MetadataService) *SongService {
	return &SongService{
		storage:  storage,
		metadata: metadata,
	}
}

func validatePayload(payload *models.SongPayload) error {
	if payload.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if payload.Album == "" {
		return fmt.Errorf("%w: album is required", ErrValidation)
	}
	if payload.Year < 0 {
		return fmt.Errorf("%w: year must be non-negative", ErrValidation)
	}
	return nil
}

// toSong converts a payload into a normalized catalog record.
func toSong(payload *models.SongPayload) *models.Song {
	song := &models.Song{
		Title:    payload.Title,
		Album:    payload.Album,
		Year:     payload.Year,
		Artists:  payload.Artists,
		Genre:    payload.Genre,
		Language: payload.Language,
		Tags:     payload.Tags,
		Link:     payload.Link,
	}
	normalize.Song(song)
	return song
}

// runInTx executes the mutation and the metadata rebuild in one transaction.
func (s *SongService) runInTx(ctx context.Context, mutate func(tx pgx.Tx) error) error {
	tx, err := s.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				utils.Logger.Error("Transaction rollback failed", zap.Error(rollbackErr))
			}
		}
	}()

	if err = mutate(tx); err != nil {
		return err
	}
	if _, err = s.metadata.Rebuild(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SongService) AddSong(ctx context.Context, payload *models.SongPayload) (*models.Song, error) {
	utils.Logger.Debug("SongService.AddSong", zap.String("title", payload.Title), zap.String("album", payload.Album))

	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	song := toSong(payload)

	duplicate, err := s.storage.HasDuplicate(ctx, song.Title, song.Album, song.Artists)
	if err != nil {
		utils.Logger.Error("SongService.AddSong - storage.HasDuplicate failed", zap.Error(err))
		return nil, fmt.Errorf("SongService.AddSong - storage.HasDuplicate failed: %w", err)
	}
	if duplicate {
		return nil, ErrDuplicateSong
	}

	var added *models.Song
	err = s.runInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		added, txErr = s.storage.Create(ctx, song, tx)
		if txErr != nil {
			return fmt.Errorf("SongService.AddSong - storage.Create failed: %w", txErr)
		}
		return nil
	})
	if err != nil {
		utils.Logger.Error("SongService.AddSong failed", zap.Error(err))
		return nil, err
	}

	utils.Logger.Info("SongService.AddSong - song added", zap.String("song_id", added.ID.String()), zap.String("title", added.Title))
	return added, nil
}

// GetSongs returns one page of the catalog wrapped in the count/next/previous
// envelope.
func (s *SongService) GetSongs(ctx context.Context, pagination *models.Pagination) (*models.Page, error) {
	utils.Logger.Debug("SongService.GetSongs", zap.Any("pagination", pagination))

	count, err := s.storage.Count(ctx)
	if err != nil {
		utils.Logger.Error("SongService.GetSongs - storage.Count failed", zap.Error(err))
		return nil, fmt.Errorf("SongService.GetSongs - storage.Count failed: %w", err)
	}

	songs, err := s.storage.List(ctx, pagination)
	if err != nil {
		utils.Logger.Error("SongService.GetSongs - storage.List failed", zap.Error(err), zap.Any("pagination", pagination))
		return nil, fmt.Errorf("SongService.GetSongs - storage.List failed: %w", err)
	}

	return models.NewPage(count, pagination, songs), nil
}

func (s *SongService) GetSong(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	song, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSongNotFound) {
			return nil, storage.ErrSongNotFound
		}
		utils.Logger.Error("SongService.GetSong - storage.GetByID failed", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("SongService.GetSong - storage.GetByID failed: %w", err)
	}
	return song, nil
}

func (s *SongService) UpdateSong(ctx context.Context, id uuid.UUID, payload *models.SongPayload) (*models.Song, error) {
	utils.Logger.Debug("SongService.UpdateSong", zap.String("id", id.String()))

	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	song := toSong(payload)
	song.ID = id

	var updated *models.Song
	err := s.runInTx(ctx, func(tx pgx.Tx) error {
		var txErr error
		updated, txErr = s.storage.Update(ctx, song, tx)
		if txErr != nil {
			if errors.Is(txErr, storage.ErrSongNotFound) {
				return storage.ErrSongNotFound
			}
			return fmt.Errorf("SongService.UpdateSong - storage.Update failed: %w", txErr)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, storage.ErrSongNotFound) {
			utils.Logger.Error("SongService.UpdateSong failed", zap.Error(err), zap.String("id", id.String()))
		}
		return nil, err
	}

	utils.Logger.Info("SongService.UpdateSong - song updated", zap.String("song_id", updated.ID.String()), zap.String("title", updated.Title))
	return updated, nil
}

func (s *SongService) DeleteSong(ctx context.Context, id uuid.UUID) error {
	utils.Logger.Debug("SongService.DeleteSong", zap.String("id", id.String()))

	err := s.runInTx(ctx, func(tx pgx.Tx) error {
		if txErr := s.storage.Delete(ctx, id, tx); txErr != nil {
			if errors.Is(txErr, storage.ErrSongNotFound) {
				return storage.ErrSongNotFound
			}
			return fmt.Errorf("SongService.DeleteSong - storage.Delete failed: %w", txErr)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, storage.ErrSongNotFound) {
			utils.Logger.Error("SongService.DeleteSong failed", zap.Error(err), zap.String("id", id.String()))
		}
		return err
	}

	utils.Logger.Info("SongService.DeleteSong - song deleted", zap.String("song_id", id.String()))
	return nil
}

// FilterSongs returns every song matching any of the candidate values,
// unpaginated. An empty filter returns the full catalog.
func (s *SongService) FilterSongs(ctx context.Context, filter *models.SongFilter) ([]models.Song, error) {
	utils.Logger.Debug("SongService.FilterSongs", zap.Any("filter", filter))

	songs, err := s.storage.Filter(ctx, filter)
	if err != nil {
		utils.Logger.Error("SongService.FilterSongs - storage.Filter failed", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("SongService.FilterSongs - storage.Filter failed: %w", err)
	}
	return songs, nil
}

// SearchSongs returns songs whose title contains the query, case-insensitive.
func (s *SongService) SearchSongs(ctx context.Context, query string) ([]models.Song, error) {
	utils.Logger.Debug("SongService.SearchSongs", zap.String("query", query))

	songs, err := s.storage.SearchByTitle(ctx, normalize.String(query))
	if err != nil {
		utils.Logger.Error("SongService.SearchSongs - storage.SearchByTitle failed", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("SongService.SearchSongs - storage.SearchByTitle failed: %w", err)
	}
	return songs, nil
}

// BulkCreate validates each payload independently, rejects duplicates against
// the persisted catalog only (items in the same batch do not shadow each
// other), persists the survivors as one batch and rebuilds metadata once.
// Every rejected item is reported back with its index and reason.
func (s *SongService) BulkCreate(ctx context.Context, payloads []models.SongPayload) (*models.BulkCreateResult, error) {
	utils.Logger.Debug("SongService.BulkCreate", zap.Int("items", len(payloads)))

	result := &models.BulkCreateResult{
		Created: []models.Song{},
		Skipped: []models.BulkSkippedItem{},
	}

	var accepted []models.Song
	for i := range payloads {
		if err := validatePayload(&payloads[i]); err != nil {
			result.Skipped = append(result.Skipped, models.BulkSkippedItem{Index: i, Reason: err.Error()})
			continue
		}
		song := toSong(&payloads[i])

		duplicate, err := s.storage.HasDuplicate(ctx, song.Title, song.Album, song.Artists)
		if err != nil {
			utils.Logger.Error("SongService.BulkCreate - storage.HasDuplicate failed", zap.Error(err), zap.Int("index", i))
			return nil, fmt.Errorf("SongService.BulkCreate - storage.HasDuplicate failed: %w", err)
		}
		if duplicate {
			result.Skipped = append(result.Skipped, models.BulkSkippedItem{Index: i, Reason: "duplicate song"})
			continue
		}
		accepted = append(accepted, *song)
	}

	if len(accepted) == 0 {
		utils.Logger.Info("SongService.BulkCreate - nothing to create", zap.Int("skipped", len(result.Skipped)))
		return result, nil
	}

	err := s.runInTx(ctx, func(tx pgx.Tx) error {
		created, txErr := s.storage.CreateBatch(ctx, accepted, tx)
		if txErr != nil {
			return fmt.Errorf("SongService.BulkCreate - storage.CreateBatch failed: %w", txErr)
		}
		result.Created = created
		return nil
	})
	if err != nil {
		utils.Logger.Error("SongService.BulkCreate failed", zap.Error(err))
		return nil, err
	}

	utils.Logger.Info("SongService.BulkCreate - batch created",
		zap.Int("created", len(result.Created)), zap.Int("skipped", len(result.Skipped)))
	return result, nil
}
