// internal/storage/postgres/users.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/models"
	"musiccatalog/internal/storage"
)

const userColumns = "id, username, email, password_hash, name, verification_token, is_verified, is_active, is_staff, date_created"

const pgUniqueViolation = "23505"

type PgUserStorage struct {
	conn *pgx.Conn
}

func NewPgUserStorage(conn *pgx.Conn) storage.UserStorage {
	return &PgUserStorage{conn: conn}
}

func scanUser(row pgx.Row) (*models.UserProfile, error) {
	var user models.UserProfile
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Name,
		&user.VerificationToken, &user.IsVerified, &user.IsActive, &user.IsStaff, &user.DateCreated,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *PgUserStorage) Create(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error) {
	query := `
        INSERT INTO user_profiles (username, email, password_hash, name, verification_token, is_verified, is_active, is_staff)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + userColumns
	created, err := scanUser(s.conn.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Name,
		user.VerificationToken, user.IsVerified, user.IsActive, user.IsStaff,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, storage.ErrDuplicateUser
		}
		utils.Logger.Error("PgUserStorage.Create - queryRow failed", zap.Error(err))
		return nil, fmt.Errorf("PgUserStorage.Create - queryRow failed: %w", err)
	}
	return created, nil
}

func (s *PgUserStorage) getBy(ctx context.Context, field string, value interface{}) (*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM user_profiles WHERE ` + field + ` = $1`
	user, err := scanUser(s.conn.QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		utils.Logger.Error("PgUserStorage.getBy - queryRow failed", zap.Error(err), zap.String("field", field))
		return nil, fmt.Errorf("PgUserStorage.getBy %s - queryRow failed: %w", field, err)
	}
	return user, nil
}

func (s *PgUserStorage) GetByID(ctx context.Context, id int) (*models.UserProfile, error) {
	return s.getBy(ctx, "id", id)
}

func (s *PgUserStorage) GetByUsername(ctx context.Context, username string) (*models.UserProfile, error) {
	return s.getBy(ctx, "username", username)
}

func (s *PgUserStorage) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	return s.getBy(ctx, "email", email)
}

func (s *PgUserStorage) GetByVerificationToken(ctx context.Context, token string) (*models.UserProfile, error) {
	return s.getBy(ctx, "verification_token", token)
}

func (s *PgUserStorage) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_profiles WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		utils.Logger.Error("PgUserStorage.ExistsByEmail - queryRow failed", zap.Error(err))
		return false, fmt.Errorf("PgUserStorage.ExistsByEmail - queryRow failed: %w", err)
	}
	return exists, nil
}

func (s *PgUserStorage) Update(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error) {
	query := `
        UPDATE user_profiles
        SET username = $1, email = $2, password_hash = $3, name = $4, verification_token = $5,
            is_verified = $6, is_active = $7, is_staff = $8
        WHERE id = $9
        RETURNING ` + userColumns
	updated, err := scanUser(s.conn.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Name, user.VerificationToken,
		user.IsVerified, user.IsActive, user.IsStaff, user.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, storage.ErrDuplicateUser
		}
		utils.Logger.Error("PgUserStorage.Update - queryRow failed", zap.Error(err), zap.Int("id", user.ID))
		return nil, fmt.Errorf("PgUserStorage.Update - queryRow failed: %w", err)
	}
	return updated, nil
}

func (s *PgUserStorage) Delete(ctx context.Context, id int) error {
	result, err := s.conn.Exec(ctx, `DELETE FROM user_profiles WHERE id = $1`, id)
	if err != nil {
		utils.Logger.Error("PgUserStorage.Delete - exec failed", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("PgUserStorage.Delete - exec failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

type PgRefreshTokenStorage struct {
	conn *pgx.Conn
}

func NewPgRefreshTokenStorage(conn *pgx.Conn) storage.RefreshTokenStorage {
	return &PgRefreshTokenStorage{conn: conn}
}

func (s *PgRefreshTokenStorage) Create(ctx context.Context, userID int, token string) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token) VALUES ($1, $2)`, userID, token)
	if err != nil {
		utils.Logger.Error("PgRefreshTokenStorage.Create - exec failed", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("PgRefreshTokenStorage.Create - exec failed: %w", err)
	}
	return nil
}

func (s *PgRefreshTokenStorage) Exists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1)`, token).Scan(&exists)
	if err != nil {
		utils.Logger.Error("PgRefreshTokenStorage.Exists - queryRow failed", zap.Error(err))
		return false, fmt.Errorf("PgRefreshTokenStorage.Exists - queryRow failed: %w", err)
	}
	return exists, nil
}

func (s *PgRefreshTokenStorage) Delete(ctx context.Context, token string) error {
	result, err := s.conn.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		utils.Logger.Error("PgRefreshTokenStorage.Delete - exec failed", zap.Error(err))
		return fmt.Errorf("PgRefreshTokenStorage.Delete - exec failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrTokenNotFound
	}
	return nil
}
