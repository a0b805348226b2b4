// internal/storage/postgres/metadata.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/models"
	"musiccatalog/internal/storage"
)

type PgMetadataStorage struct {
	conn *pgx.Conn
}

func NewPgMetadataStorage(conn *pgx.Conn) storage.MetadataStorage {
	return &PgMetadataStorage{conn: conn}
}

func (s *PgMetadataStorage) runner(tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return s.conn
}

func (s *PgMetadataStorage) Get(ctx context.Context) (*models.Metadata, error) {
	var meta models.Metadata
	err := s.conn.QueryRow(ctx,
		`SELECT id, album, artists, genre, language, tags, years FROM metadata LIMIT 1`).Scan(
		&meta.ID, &meta.Album, &meta.Artists, &meta.Genre, &meta.Language, &meta.Tags, &meta.Years,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNoMetadata
		}
		utils.Logger.Error("PgMetadataStorage.Get - queryRow failed", zap.Error(err))
		return nil, fmt.Errorf("PgMetadataStorage.Get - queryRow failed: %w", err)
	}
	return &meta, nil
}

// Upsert replaces the sole metadata row, creating it on first rebuild. The
// singleton column keeps concurrent writers from leaving two rows behind.
func (s *PgMetadataStorage) Upsert(ctx context.Context, meta *models.Metadata, tx pgx.Tx) (*models.Metadata, error) {
	query := `
        INSERT INTO metadata (singleton, album, artists, genre, language, tags, years)
        VALUES (TRUE, $1, $2, $3, $4, $5, $6)
        ON CONFLICT (singleton) DO UPDATE
        SET album = EXCLUDED.album, artists = EXCLUDED.artists, genre = EXCLUDED.genre,
            language = EXCLUDED.language, tags = EXCLUDED.tags, years = EXCLUDED.years
        RETURNING id, album, artists, genre, language, tags, years`
	var saved models.Metadata
	err := s.runner(tx).QueryRow(ctx, query,
		meta.Album, meta.Artists, meta.Genre, meta.Language, meta.Tags, meta.Years,
	).Scan(&saved.ID, &saved.Album, &saved.Artists, &saved.Genre, &saved.Language, &saved.Tags, &saved.Years)
	if err != nil {
		utils.Logger.Error("PgMetadataStorage.Upsert - queryRow failed", zap.Error(err))
		return nil, fmt.Errorf("PgMetadataStorage.Upsert - queryRow failed: %w", err)
	}
	return &saved, nil
}
