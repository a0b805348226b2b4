// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/models"
	"musiccatalog/internal/storage"
)

const songColumns = "id, title, album, year, artists, genre, language, tags, link, created_at, updated_at"

// querier is satisfied by both *pgx.Conn and pgx.Tx, so every method can run
// standalone or inside a caller-owned transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgSongStorage struct {
	conn *pgx.Conn
}

func NewPgSongStorage(conn *pgx.Conn) storage.SongStorage {
	return &PgSongStorage{conn: conn}
}

func (s *PgSongStorage) runner(tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return s.conn
}

// BeginTx starts a new transaction.
func (s *PgSongStorage) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return tx, nil
}

func scanSong(row pgx.Row) (*models.Song, error) {
	var song models.Song
	err := row.Scan(
		&song.ID, &song.Title, &song.Album, &song.Year, &song.Artists,
		&song.Genre, &song.Language, &song.Tags, &song.Link,
		&song.CreatedAt, &song.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &song, nil
}

func collectSongs(rows pgx.Rows) ([]models.Song, error) {
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan failed: %w", err)
		}
		songs = append(songs, *song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err failed: %w", err)
	}
	return songs, nil
}

// Create inserts a new song.
func (s *PgSongStorage) Create(ctx context.Context, song *models.Song, tx pgx.Tx) (*models.Song, error) {
	query := `
        INSERT INTO songs (title, album, year, artists, genre, language, tags, link)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + songColumns
	added, err := scanSong(s.runner(tx).QueryRow(ctx, query,
		song.Title, song.Album, song.Year, song.Artists, song.Genre, song.Language, song.Tags, song.Link,
	))
	if err != nil {
		utils.Logger.Error("PgSongStorage.Create - queryRow failed", zap.Error(err))
		return nil, fmt.Errorf("PgSongStorage.Create - queryRow failed: %w", err)
	}
	return added, nil
}

// CreateBatch inserts all songs within one statement sequence; callers run it
// inside a transaction so the batch lands atomically.
func (s *PgSongStorage) CreateBatch(ctx context.Context, songs []models.Song, tx pgx.Tx) ([]models.Song, error) {
	added := make([]models.Song, 0, len(songs))
	for i := range songs {
		song, err := s.Create(ctx, &songs[i], tx)
		if err != nil {
			return nil, fmt.Errorf("PgSongStorage.CreateBatch - item %d failed: %w", i, err)
		}
		added = append(added, *song)
	}
	return added, nil
}

func (s *PgSongStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = $1`
	song, err := scanSong(s.conn.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSongNotFound
		}
		utils.Logger.Error("PgSongStorage.GetByID - queryRow failed", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("PgSongStorage.GetByID - queryRow failed: %w", err)
	}
	return song, nil
}

func (s *PgSongStorage) List(ctx context.Context, pagination *models.Pagination) ([]models.Song, error) {
	query := fmt.Sprintf(`SELECT `+songColumns+` FROM songs ORDER BY created_at, id LIMIT %d OFFSET %d`,
		pagination.GetLimit(), pagination.GetOffset())

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		utils.Logger.Error("PgSongStorage.List - query failed", zap.Error(err), zap.Any("pagination", pagination))
		return nil, fmt.Errorf("PgSongStorage.List - query failed: %w", err)
	}
	return collectSongs(rows)
}

func (s *PgSongStorage) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count); err != nil {
		utils.Logger.Error("PgSongStorage.Count - queryRow failed", zap.Error(err))
		return 0, fmt.Errorf("PgSongStorage.Count - queryRow failed: %w", err)
	}
	return count, nil
}

func (s *PgSongStorage) ListAll(ctx context.Context, tx pgx.Tx) ([]models.Song, error) {
	rows, err := s.runner(tx).Query(ctx, `SELECT `+songColumns+` FROM songs`)
	if err != nil {
		utils.Logger.Error("PgSongStorage.ListAll - query failed", zap.Error(err))
		return nil, fmt.Errorf("PgSongStorage.ListAll - query failed: %w", err)
	}
	return collectSongs(rows)
}

// Filter combines one predicate per candidate value with OR. Album and year
// match exactly, the list fields match any element containing the candidate.
func (s *PgSongStorage) Filter(ctx context.Context, filter *models.SongFilter) ([]models.Song, error) {
	if filter.IsEmpty() {
		return s.ListAll(ctx, nil)
	}

	var conditions []string
	var params []interface{}

	addCondition := func(format string, value interface{}) {
		params = append(params, value)
		conditions = append(conditions, fmt.Sprintf(format, len(params)))
	}

	for _, album := range filter.Album {
		addCondition("lower(album) = lower($%d)", album)
	}
	for _, year := range filter.Year {
		addCondition("year = $%d", year)
	}
	for _, artist := range filter.Artists {
		addCondition("EXISTS (SELECT 1 FROM unnest(artists) AS v WHERE v ILIKE '%%' || $%d || '%%')", artist)
	}
	for _, genre := range filter.Genre {
		addCondition("EXISTS (SELECT 1 FROM unnest(genre) AS v WHERE v ILIKE '%%' || $%d || '%%')", genre)
	}
	for _, language := range filter.Language {
		addCondition("EXISTS (SELECT 1 FROM unnest(language) AS v WHERE v ILIKE '%%' || $%d || '%%')", language)
	}
	for _, tag := range filter.Tags {
		addCondition("EXISTS (SELECT 1 FROM unnest(tags) AS v WHERE v ILIKE '%%' || $%d || '%%')", tag)
	}

	query := `SELECT ` + songColumns + ` FROM songs WHERE `
	for i, cond := range conditions {
		if i > 0 {
			query += " OR "
		}
		query += cond
	}

	rows, err := s.conn.Query(ctx, query, params...)
	if err != nil {
		utils.Logger.Error("PgSongStorage.Filter - query failed", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("PgSongStorage.Filter - query failed: %w", err)
	}
	return collectSongs(rows)
}

func (s *PgSongStorage) SearchByTitle(ctx context.Context, query string) ([]models.Song, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT `+songColumns+` FROM songs WHERE title ILIKE '%' || $1 || '%'`, query)
	if err != nil {
		utils.Logger.Error("PgSongStorage.SearchByTitle - query failed", zap.Error(err), zap.String("query", query))
		return nil, fmt.Errorf("PgSongStorage.SearchByTitle - query failed: %w", err)
	}
	return collectSongs(rows)
}

// HasDuplicate reports whether a song with the same title, same album and at
// least one shared artist is already persisted. Inputs are expected to be
// lowercased already; comparisons stay case-insensitive regardless.
func (s *PgSongStorage) HasDuplicate(ctx context.Context, title, album string, artists []string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM songs
            WHERE lower(title) = lower($1) AND lower(album) = lower($2) AND artists && $3::text[]
        )`, title, album, artists).Scan(&exists)
	if err != nil {
		utils.Logger.Error("PgSongStorage.HasDuplicate - queryRow failed", zap.Error(err))
		return false, fmt.Errorf("PgSongStorage.HasDuplicate - queryRow failed: %w", err)
	}
	return exists, nil
}

func (s *PgSongStorage) Update(ctx context.Context, song *models.Song, tx pgx.Tx) (*models.Song, error) {
	query := `
        UPDATE songs
        SET title = $1, album = $2, year = $3, artists = $4, genre = $5, language = $6, tags = $7, link = $8, updated_at = CURRENT_TIMESTAMP
        WHERE id = $9
        RETURNING ` + songColumns
	updated, err := scanSong(s.runner(tx).QueryRow(ctx, query,
		song.Title, song.Album, song.Year, song.Artists, song.Genre, song.Language, song.Tags, song.Link, song.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSongNotFound
		}
		utils.Logger.Error("PgSongStorage.Update - queryRow failed", zap.Error(err), zap.String("id", song.ID.String()))
		return nil, fmt.Errorf("PgSongStorage.Update - queryRow failed: %w", err)
	}
	return updated, nil
}

func (s *PgSongStorage) Delete(ctx context.Context, id uuid.UUID, tx pgx.Tx) error {
	result, err := s.runner(tx).Exec(ctx, "DELETE FROM songs WHERE id = $1", id)
	if err != nil {
		utils.Logger.Error("PgSongStorage.Delete - exec failed", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("PgSongStorage.Delete - exec failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrSongNotFound
	}
	return nil
}
