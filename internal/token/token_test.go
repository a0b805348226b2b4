package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"musiccatalog/internal/token"
)

func TestManager_GeneratePairRoundTrip(t *testing.T) {
	manager := token.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	access, refresh, err := manager.GeneratePair(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	userID, err := manager.ValidateAccess(access)
	assert.NoError(t, err)
	assert.Equal(t, 42, userID)

	userID, err = manager.ValidateRefresh(refresh)
	assert.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestManager_TokenTypesAreNotInterchangeable(t *testing.T) {
	manager := token.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	access, refresh, err := manager.GeneratePair(1)
	assert.NoError(t, err)

	_, err = manager.ValidateRefresh(access)
	assert.Error(t, err)

	_, err = manager.ValidateAccess(refresh)
	assert.Error(t, err)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	issuer := token.NewManager("secret-a", 15*time.Minute, 24*time.Hour)
	verifier := token.NewManager("secret-b", 15*time.Minute, 24*time.Hour)

	access, _, err := issuer.GeneratePair(1)
	assert.NoError(t, err)

	_, err = verifier.ValidateAccess(access)
	assert.Error(t, err)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	manager := token.NewManager("test-secret", -time.Minute, -time.Minute)

	access, _, err := manager.GeneratePair(1)
	assert.NoError(t, err)

	_, err = manager.ValidateAccess(access)
	assert.Error(t, err)
}

func TestManager_RejectsGarbage(t *testing.T) {
	manager := token.NewManager("test-secret", 15*time.Minute, 24*time.Hour)

	_, err := manager.ValidateAccess("not.a.jwt")
	assert.Error(t, err)
}
