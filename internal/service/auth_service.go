// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"musiccatalog/internal/lib/logger/utils"
	"musiccatalog/internal/models"
	"musiccatalog/internal/storage"
	"musiccatalog/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("email already exists")
)

// Mailer is the outbound mail surface the auth flows need. The SMTP
// implementation lives in internal/mailer.
type Mailer interface {
	SendVerification(name, email, token string) error
	SendPasswordReset(name, email, token string) error
	SendEmailUpdate(name, newEmail, token string) error
}

type AuthService struct {
	users   storage.UserStorage
	refresh storage.RefreshTokenStorage
	tokens  *token.Manager
	mailer  Mailer
}

func NewAuthService(users storage.UserStorage, refresh storage.RefreshTokenStorage, tokens *token.Manager, mailer Mailer) *AuthService {
	return &AuthService{
		users:   users,
		refresh: refresh,
		tokens:  tokens,
		mailer:  mailer,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateRegistration(req *models.RegisterRequest) error {
	if req.Username == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("%w: username, name, email and password are required", ErrValidation)
	}
	if !emailRegex.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}

// Register creates an unverified account and mails a verification link. The
// verification token is the sole gate to logging in.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserProfile, error) {
	utils.Logger.Debug("AuthService.Register", zap.String("username", req.Username))

	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Register - bcrypt failed: %w", err)
	}

	verificationToken := uuid.NewString()
	user := &models.UserProfile{
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      string(hash),
		Name:              req.Name,
		VerificationToken: &verificationToken,
		IsActive:          true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateUser) {
			return nil, storage.ErrDuplicateUser
		}
		utils.Logger.Error("AuthService.Register - users.Create failed", zap.Error(err))
		return nil, fmt.Errorf("AuthService.Register - users.Create failed: %w", err)
	}

	if err := s.mailer.SendVerification(created.Name, created.Email, verificationToken); err != nil {
		utils.Logger.Error("AuthService.Register - verification mail failed", zap.Error(err), zap.Int("user_id", created.ID))
		return nil, fmt.Errorf("AuthService.Register - verification mail failed: %w", err)
	}

	utils.Logger.Info("AuthService.Register - user registered", zap.Int("user_id", created.ID), zap.String("username", created.Username))
	return created, nil
}

// findByIdentifier resolves a username or an email; a '@' means email.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*models.UserProfile, error) {
	if strings.Contains(identifier, "@") {
		return s.users.GetByEmail(ctx, identifier)
	}
	return s.users.GetByUsername(ctx, identifier)
}

// Login checks credentials, rejects unverified accounts regardless of
// password correctness and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.UserProfile, string, string, error) {
	utils.Logger.Debug("AuthService.Login", zap.String("identifier", req.Identifier))

	user, err := s.findByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		utils.Logger.Error("AuthService.Login - user lookup failed", zap.Error(err))
		return nil, "", "", fmt.Errorf("AuthService.Login - user lookup failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", "", ErrNotVerified
	}

	access, refreshToken, err := s.tokens.GeneratePair(user.ID)
	if err != nil {
		utils.Logger.Error("AuthService.Login - token generation failed", zap.Error(err), zap.Int("user_id", user.ID))
		return nil, "", "", fmt.Errorf("AuthService.Login - token generation failed: %w", err)
	}

	if err := s.refresh.Create(ctx, user.ID, refreshToken); err != nil {
		utils.Logger.Error("AuthService.Login - refresh store failed", zap.Error(err), zap.Int("user_id", user.ID))
		return nil, "", "", fmt.Errorf("AuthService.Login - refresh store failed: %w", err)
	}

	utils.Logger.Info("AuthService.Login - login successful", zap.Int("user_id", user.ID))
	return user, access, refreshToken, nil
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refresh.Delete(ctx, refreshToken); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return ErrInvalidToken
		}
		utils.Logger.Error("AuthService.Logout - refresh delete failed", zap.Error(err))
		return fmt.Errorf("AuthService.Logout - refresh delete failed: %w", err)
	}
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, storage.ErrUserNotFound
		}
		utils.Logger.Error("AuthService.GetProfile - users.GetByID failed", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("AuthService.GetProfile - users.GetByID failed: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a name change directly. An email change only issues a
// verification token and mails the new address; the address switches when
// VerifyEmailUpdate consumes the token.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.UserProfile, bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("AuthService.UpdateProfile - users.GetByID failed: %w", err)
	}

	if req.Email != nil && *req.Email != user.Email {
		if !emailRegex.MatchString(*req.Email) {
			return nil, false, fmt.Errorf("%w: invalid email format", ErrValidation)
		}
		taken, err := s.users.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			utils.Logger.Error("AuthService.UpdateProfile - ExistsByEmail failed", zap.Error(err))
			return nil, false, fmt.Errorf("AuthService.UpdateProfile - ExistsByEmail failed: %w", err)
		}
		if taken {
			return nil, false, ErrEmailTaken
		}

		verificationToken := uuid.NewString()
		user.VerificationToken = &verificationToken
		if _, err := s.users.Update(ctx, user); err != nil {
			utils.Logger.Error("AuthService.UpdateProfile - users.Update failed", zap.Error(err), zap.Int("user_id", userID))
			return nil, false, fmt.Errorf("AuthService.UpdateProfile - users.Update failed: %w", err)
		}
		if err := s.mailer.SendEmailUpdate(user.Name, *req.Email, verificationToken); err != nil {
			utils.Logger.Error("AuthService.UpdateProfile - email-update mail failed", zap.Error(err), zap.Int("user_id", userID))
			return nil, false, fmt.Errorf("AuthService.UpdateProfile - email-update mail failed: %w", err)
		}

		utils.Logger.Info("AuthService.UpdateProfile - email change pending verification", zap.Int("user_id", userID))
		return user, true, nil
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		utils.Logger.Error("AuthService.UpdateProfile - users.Update failed", zap.Error(err), zap.Int("user_id", userID))
		return nil, false, fmt.Errorf("AuthService.UpdateProfile - users.Update failed: %w", err)
	}
	return updated, false, nil
}

func (s *AuthService) DeleteProfile(ctx context.Context, userID int) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return storage.ErrUserNotFound
		}
		utils.Logger.Error("AuthService.DeleteProfile - users.Delete failed", zap.Error(err), zap.Int("user_id", userID))
		return fmt.Errorf("AuthService.DeleteProfile - users.Delete failed: %w", err)
	}
	utils.Logger.Info("AuthService.DeleteProfile - account deleted", zap.Int("user_id", userID))
	return nil
}

// consumeToken looks a user up by verification token and clears it after
// applying the mutation. Tokens are single use across all three flows.
func (s *AuthService) consumeToken(ctx context.Context, verificationToken string, apply func(*models.UserProfile)) error {
	user, err := s.users.GetByVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrInvalidToken
		}
		utils.Logger.Error("AuthService.consumeToken - lookup failed", zap.Error(err))
		return fmt.Errorf("AuthService.consumeToken - lookup failed: %w", err)
	}

	apply(user)
	user.VerificationToken = nil
	if _, err := s.users.Update(ctx, user); err != nil {
		utils.Logger.Error("AuthService.consumeToken - users.Update failed", zap.Error(err), zap.Int("user_id", user.ID))
		return fmt.Errorf("AuthService.consumeToken - users.Update failed: %w", err)
	}
	return nil
}

// VerifyEmail flips the account to verified; one-way transition.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) error {
	return s.consumeToken(ctx, verificationToken, func(user *models.UserProfile) {
		user.IsVerified = true
	})
}

// VerifyEmailUpdate applies a pending email change.
func (s *AuthService) VerifyEmailUpdate(ctx context.Context, verificationToken, newEmail string) error {
	return s.consumeToken(ctx, verificationToken, func(user *models.UserProfile) {
		user.Email = newEmail
	})
}

// ForgotPassword reissues a verification token and mails a reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, identifier string) error {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return storage.ErrUserNotFound
		}
		utils.Logger.Error("AuthService.ForgotPassword - user lookup failed", zap.Error(err))
		return fmt.Errorf("AuthService.ForgotPassword - user lookup failed: %w", err)
	}

	verificationToken := uuid.NewString()
	user.VerificationToken = &verificationToken
	if _, err := s.users.Update(ctx, user); err != nil {
		utils.Logger.Error("AuthService.ForgotPassword - users.Update failed", zap.Error(err), zap.Int("user_id", user.ID))
		return fmt.Errorf("AuthService.ForgotPassword - users.Update failed: %w", err)
	}

	if err := s.mailer.SendPasswordReset(user.Name, user.Email, verificationToken); err != nil {
		utils.Logger.Error("AuthService.ForgotPassword - reset mail failed", zap.Error(err), zap.Int("user_id", user.ID))
		return fmt.Errorf("AuthService.ForgotPassword - reset mail failed: %w", err)
	}

	utils.Logger.Info("AuthService.ForgotPassword - reset link sent", zap.Int("user_id", user.ID))
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, verificationToken, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("AuthService.ResetPassword - bcrypt failed: %w", err)
	}
	return s.consumeToken(ctx, verificationToken, func(user *models.UserProfile) {
		user.PasswordHash = string(hash)
	})
}

// VerifyAccessToken translates token-library failures into ErrInvalidToken.
func (s *AuthService) VerifyAccessToken(accessToken string) error {
	if _, err := s.tokens.ValidateAccess(accessToken); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// RefreshAccessToken validates a refresh token, requires it to still be
// stored (not revoked by logout) and issues a new access token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	stored, err := s.refresh.Exists(ctx, refreshToken)
	if err != nil {
		utils.Logger.Error("AuthService.RefreshAccessToken - refresh lookup failed", zap.Error(err))
		return "", fmt.Errorf("AuthService.RefreshAccessToken - refresh lookup failed: %w", err)
	}
	if !stored {
		return "", ErrInvalidToken
	}

	access, _, err := s.tokens.GeneratePair(userID)
	if err != nil {
		utils.Logger.Error("AuthService.RefreshAccessToken - token generation failed", zap.Error(err), zap.Int("user_id", userID))
		return "", fmt.Errorf("AuthService.RefreshAccessToken - token generation failed: %w", err)
	}
	return access, nil
}
