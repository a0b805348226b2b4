// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"musiccatalog/internal/models"
)

var (
	ErrSongNotFound  = errors.New("song not found")
	ErrNoMetadata    = errors.New("no metadata found")
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrDuplicateUser = errors.New("username or email already exists")
)

type SongStorage interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, song *models.Song, tx pgx.Tx) (*models.Song, error)
	CreateBatch(ctx context.Context, songs []models.Song, tx pgx.Tx) ([]models.Song, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error)
	List(ctx context.Context, pagination *models.Pagination) ([]models.Song, error)
	Count(ctx context.Context) (int, error)
	ListAll(ctx context.Context, tx pgx.Tx) ([]models.Song, error)
	Filter(ctx context.Context, filter *models.SongFilter) ([]models.Song, error)
	SearchByTitle(ctx context.Context, query string) ([]models.Song, error)
	HasDuplicate(ctx context.Context, title, album string, artists []string) (bool, error)
	Update(ctx context.Context, song *models.Song, tx pgx.Tx) (*models.Song, error)
	Delete(ctx context.Context, id uuid.UUID, tx pgx.Tx) error
}

type MetadataStorage interface {
	Get(ctx context.Context) (*models.Metadata, error)
	Upsert(ctx context.Context, meta *models.Metadata, tx pgx.Tx) (*models.Metadata, error)
}

type UserStorage interface {
	Create(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error)
	GetByID(ctx context.Context, id int) (*models.UserProfile, error)
	GetByUsername(ctx context.Context, username string) (*models.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.UserProfile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error)
	Delete(ctx context.Context, id int) error
}

type RefreshTokenStorage interface {
	Create(ctx context.Context, userID int, token string) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}
