package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"musiccatalog/internal/models"
	"musiccatalog/internal/service"
	"musiccatalog/internal/storage"
	mock_storage "musiccatalog/internal/storage/mocks"
	"musiccatalog/internal/token"
)

// fakeMailer records outbound mail instead of talking SMTP.
type fakeMailer struct {
	verifications []string
	resets        []string
	emailUpdates  []string
	failNextSend  bool
}

func (m *fakeMailer) SendVerification(name, email, token string) error {
	if m.failNextSend {
		return errors.New("smtp unavailable")
	}
	m.verifications = append(m.verifications, token)
	return nil
}

func (m *fakeMailer) SendPasswordReset(name, email, token string) error {
	if m.failNextSend {
		return errors.New("smtp unavailable")
	}
	m.resets = append(m.resets, token)
	return nil
}

func (m *fakeMailer) SendEmailUpdate(name, newEmail, token string) error {
	if m.failNextSend {
		return errors.New("smtp unavailable")
	}
	m.emailUpdates = append(m.emailUpdates, newEmail)
	return nil
}

func newTokenManager() *token.Manager {
	return token.NewManager("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestAuthService_Register(t *testing.T) {
	validRequest := &models.RegisterRequest{
		Username: "freddie",
		Name:     "Freddie Mercury",
		Email:    "freddie@example.com",
		Password: "password123",
	}

	testCases := []struct {
		name        string
		request     *models.RegisterRequest
		mockFn      func(users *mock_storage.MockUserStorage)
		expectedErr error
	}{
		{
			name:    "Valid registration",
			request: validRequest,
			mockFn: func(users *mock_storage.MockUserStorage) {
				users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, user *models.UserProfile) (*models.UserProfile, error) {
						assert.Equal(t, "freddie", user.Username)
						assert.NotNil(t, user.VerificationToken)
						assert.False(t, user.IsVerified)
						assert.NotEqual(t, "password123", user.PasswordHash)
						created := *user
						created.ID = 1
						return &created, nil
					})
			},
		},
		{
			name:        "Missing fields",
			request:     &models.RegisterRequest{Username: "freddie"},
			mockFn:      func(*mock_storage.MockUserStorage) {},
			expectedErr: service.ErrValidation,
		},
		{
			name: "Invalid email format",
			request: &models.RegisterRequest{
				Username: "freddie", Name: "Freddie", Email: "not-an-email", Password: "password123",
			},
			mockFn:      func(*mock_storage.MockUserStorage) {},
			expectedErr: service.ErrValidation,
		},
		{
			name:    "Duplicate username or email",
			request: validRequest,
			mockFn: func(users *mock_storage.MockUserStorage) {
				users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateUser)
			},
			expectedErr: storage.ErrDuplicateUser,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			tc.mockFn(mockUsers)
			mailer := &fakeMailer{}

			svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), mailer)

			user, err := svc.Register(context.Background(), tc.request)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, mailer.verifications)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 1, user.ID)
				assert.Len(t, mailer.verifications, 1)
				assert.Equal(t, *user.VerificationToken, mailer.verifications[0])
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	passwordHash := hashPassword(t, "password123")

	verifiedUser := func() *models.UserProfile {
		return &models.UserProfile{
			ID: 1, Username: "freddie", Email: "freddie@example.com",
			PasswordHash: passwordHash, IsVerified: true,
		}
	}

	testCases := []struct {
		name        string
		request     *models.LoginRequest
		mockFn      func(users *mock_storage.MockUserStorage, refresh *mock_storage.MockRefreshTokenStorage)
		expectedErr error
	}{
		{
			name:    "Login by username",
			request: &models.LoginRequest{Identifier: "freddie", Password: "password123"},
			mockFn: func(users *mock_storage.MockUserStorage, refresh *mock_storage.MockRefreshTokenStorage) {
				users.EXPECT().GetByUsername(gomock.Any(), "freddie").Return(verifiedUser(), nil)
				refresh.EXPECT().Create(gomock.Any(), 1, gomock.Any()).Return(nil)
			},
		},
		{
			name:    "Identifier with @ resolves by email",
			request: &models.LoginRequest{Identifier: "freddie@example.com", Password: "password123"},
			mockFn: func(users *mock_storage.MockUserStorage, refresh *mock_storage.MockRefreshTokenStorage) {
				users.EXPECT().GetByEmail(gomock.Any(), "freddie@example.com").Return(verifiedUser(), nil)
				refresh.EXPECT().Create(gomock.Any(), 1, gomock.Any()).Return(nil)
			},
		},
		{
			name:    "Wrong password",
			request: &models.LoginRequest{Identifier: "freddie", Password: "wrong"},
			mockFn: func(users *mock_storage.MockUserStorage, refresh *mock_storage.MockRefreshTokenStorage) {
				users.EXPECT().GetByUsername(gomock.Any(), "freddie").Return(verifiedUser(), nil)
			},
			expectedErr: service.ErrInvalidCredentials,
		},
		{
			name:    "Unknown user",
			request: &models.LoginRequest{Identifier: "nobody", Password: "password123"},
			mockFn: func(users *mock_storage.MockUserStorage, refresh *mock_storage.MockRefreshTokenStorage) {
				users.EXPECT().GetByUsername(gomock.Any(), "nobody").Return(nil, storage.ErrUserNotFound)
			},
			expectedErr: service.ErrInvalidCredentials,
		},
		{
			name:    "Unverified account with correct password",
			request: &models.LoginRequest{Identifier: "freddie", Password: "password123"},
			mockFn: func(users *mock_storage.MockUserStorage, refresh *mock_storage.MockRefreshTokenStorage) {
				user := verifiedUser()
				user.IsVerified = false
				users.EXPECT().GetByUsername(gomock.Any(), "freddie").Return(user, nil)
			},
			expectedErr: service.ErrNotVerified,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUsers := mock_storage.NewMockUserStorage(ctrl)
			mockRefresh := mock_storage.NewMockRefreshTokenStorage(ctrl)
			tc.mockFn(mockUsers, mockRefresh)

			svc := service.NewAuthService(mockUsers, mockRefresh, newTokenManager(), &fakeMailer{})

			user, access, refreshToken, err := svc.Login(context.Background(), tc.request)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 1, user.ID)
			assert.NotEmpty(t, access)
			assert.NotEmpty(t, refreshToken)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	testCases := []struct {
		name        string
		mockFn      func(refresh *mock_storage.MockRefreshTokenStorage)
		expectedErr error
	}{
		{
			name: "Token revoked",
			mockFn: func(refresh *mock_storage.MockRefreshTokenStorage) {
				refresh.EXPECT().Delete(gomock.Any(), "some-token").Return(nil)
			},
		},
		{
			name: "Unknown token",
			mockFn: func(refresh *mock_storage.MockRefreshTokenStorage) {
				refresh.EXPECT().Delete(gomock.Any(), "some-token").Return(storage.ErrTokenNotFound)
			},
			expectedErr: service.ErrInvalidToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRefresh := mock_storage.NewMockRefreshTokenStorage(ctrl)
			tc.mockFn(mockRefresh)

			svc := service.NewAuthService(mock_storage.NewMockUserStorage(ctrl), mockRefresh, newTokenManager(), &fakeMailer{})

			err := svc.Logout(context.Background(), "some-token")

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	t.Run("Valid token verifies and is consumed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		verificationToken := "tok-123"
		user := &models.UserProfile{ID: 1, VerificationToken: &verificationToken}

		mockUsers := mock_storage.NewMockUserStorage(ctrl)
		mockUsers.EXPECT().GetByVerificationToken(gomock.Any(), "tok-123").Return(user, nil)
		mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, updated *models.UserProfile) (*models.UserProfile, error) {
				assert.True(t, updated.IsVerified)
				assert.Nil(t, updated.VerificationToken, "token is single use")
				return updated, nil
			})

		svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), &fakeMailer{})

		assert.NoError(t, svc.VerifyEmail(context.Background(), "tok-123"))
	})

	t.Run("Unknown token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockUsers := mock_storage.NewMockUserStorage(ctrl)
		mockUsers.EXPECT().GetByVerificationToken(gomock.Any(), "bad").Return(nil, storage.ErrUserNotFound)

		svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), &fakeMailer{})

		assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "bad"), service.ErrInvalidToken)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	t.Run("Name change applies immediately", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		user := &models.UserProfile{ID: 1, Name: "Old Name", Email: "freddie@example.com"}
		newName := "New Name"

		mockUsers := mock_storage.NewMockUserStorage(ctrl)
		mockUsers.EXPECT().GetByID(gomock.Any(), 1).Return(user, nil)
		mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, updated *models.UserProfile) (*models.UserProfile, error) {
				assert.Equal(t, "New Name", updated.Name)
				return updated, nil
			})

		svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), &fakeMailer{})

		updated, emailPending, err := svc.UpdateProfile(context.Background(), 1, &models.UpdateProfileRequest{Name: &newName})

		assert.NoError(t, err)
		assert.False(t, emailPending)
		assert.Equal(t, "New Name", updated.Name)
	})

	t.Run("Email change only issues a verification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		user := &models.UserProfile{ID: 1, Name: "Freddie", Email: "old@example.com"}
		newEmail := "new@example.com"
		mailer := &fakeMailer{}

		mockUsers := mock_storage.NewMockUserStorage(ctrl)
		mockUsers.EXPECT().GetByID(gomock.Any(), 1).Return(user, nil)
		mockUsers.EXPECT().ExistsByEmail(gomock.Any(), "new@example.com").Return(false, nil)
		mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, updated *models.UserProfile) (*models.UserProfile, error) {
				assert.Equal(t, "old@example.com", updated.Email, "address switches only on confirmation")
				assert.NotNil(t, updated.VerificationToken)
				return updated, nil
			})

		svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), mailer)

		_, emailPending, err := svc.UpdateProfile(context.Background(), 1, &models.UpdateProfileRequest{Email: &newEmail})

		assert.NoError(t, err)
		assert.True(t, emailPending)
		assert.Equal(t, []string{"new@example.com"}, mailer.emailUpdates)
	})

	t.Run("Email already taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		user := &models.UserProfile{ID: 1, Email: "old@example.com"}
		newEmail := "taken@example.com"

		mockUsers := mock_storage.NewMockUserStorage(ctrl)
		mockUsers.EXPECT().GetByID(gomock.Any(), 1).Return(user, nil)
		mockUsers.EXPECT().ExistsByEmail(gomock.Any(), "taken@example.com").Return(true, nil)

		svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), &fakeMailer{})

		_, _, err := svc.UpdateProfile(context.Background(), 1, &models.UpdateProfileRequest{Email: &newEmail})

		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &models.UserProfile{ID: 1, Username: "freddie", Email: "freddie@example.com", IsVerified: true}
	mailer := &fakeMailer{}
	var issuedToken string

	mockUsers := mock_storage.NewMockUserStorage(ctrl)
	mockUsers.EXPECT().GetByUsername(gomock.Any(), "freddie").Return(user, nil)
	mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, updated *models.UserProfile) (*models.UserProfile, error) {
			assert.NotNil(t, updated.VerificationToken)
			issuedToken = *updated.VerificationToken
			return updated, nil
		})

	svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), mailer)

	assert.NoError(t, svc.ForgotPassword(context.Background(), "freddie"))
	assert.Equal(t, []string{issuedToken}, mailer.resets)

	// Reset with the mailed token.
	oldHash := user.PasswordHash
	mockUsers.EXPECT().GetByVerificationToken(gomock.Any(), issuedToken).Return(user, nil)
	mockUsers.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, updated *models.UserProfile) (*models.UserProfile, error) {
			assert.NotEqual(t, oldHash, updated.PasswordHash)
			assert.Nil(t, updated.VerificationToken)
			return updated, nil
		})

	assert.NoError(t, svc.ResetPassword(context.Background(), issuedToken, "new-password"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password")))
}

func TestAuthService_ForgotPassword_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mock_storage.NewMockUserStorage(ctrl)
	mockUsers.EXPECT().GetByUsername(gomock.Any(), "nobody").Return(nil, storage.ErrUserNotFound)

	svc := service.NewAuthService(mockUsers, mock_storage.NewMockRefreshTokenStorage(ctrl), newTokenManager(), &fakeMailer{})

	assert.ErrorIs(t, svc.ForgotPassword(context.Background(), "nobody"), storage.ErrUserNotFound)
}

func TestAuthService_TokenFlows(t *testing.T) {
	manager := newTokenManager()
	access, refreshToken, err := manager.GeneratePair(1)
	assert.NoError(t, err)

	t.Run("VerifyAccessToken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := service.NewAuthService(mock_storage.NewMockUserStorage(ctrl), mock_storage.NewMockRefreshTokenStorage(ctrl), manager, &fakeMailer{})

		assert.NoError(t, svc.VerifyAccessToken(access))
		assert.ErrorIs(t, svc.VerifyAccessToken("garbage"), service.ErrInvalidToken)
		assert.ErrorIs(t, svc.VerifyAccessToken(refreshToken), service.ErrInvalidToken, "refresh token is not an access token")
	})

	t.Run("RefreshAccessToken with stored token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRefresh := mock_storage.NewMockRefreshTokenStorage(ctrl)
		mockRefresh.EXPECT().Exists(gomock.Any(), refreshToken).Return(true, nil)

		svc := service.NewAuthService(mock_storage.NewMockUserStorage(ctrl), mockRefresh, manager, &fakeMailer{})

		newAccess, err := svc.RefreshAccessToken(context.Background(), refreshToken)
		assert.NoError(t, err)
		assert.NoError(t, svc.VerifyAccessToken(newAccess))
	})

	t.Run("Revoked refresh token is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRefresh := mock_storage.NewMockRefreshTokenStorage(ctrl)
		mockRefresh.EXPECT().Exists(gomock.Any(), refreshToken).Return(false, nil)

		svc := service.NewAuthService(mock_storage.NewMockUserStorage(ctrl), mockRefresh, manager, &fakeMailer{})

		_, err := svc.RefreshAccessToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("Malformed refresh token is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := service.NewAuthService(mock_storage.NewMockUserStorage(ctrl), mock_storage.NewMockRefreshTokenStorage(ctrl), manager, &fakeMailer{})

		_, err := svc.RefreshAccessToken(context.Background(), "garbage")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})
}
