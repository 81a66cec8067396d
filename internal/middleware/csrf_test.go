package middleware

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key"

func TestCsrfTokenRoundTrip(t *testing.T) {
	ownerKey := "anon:" + uuid.NewString()

	token, err := IssueCsrfToken(ownerKey, testSecretKey)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, VerifyCsrfToken(token, ownerKey, testSecretKey))
}

func TestCsrfTokenRejectsOtherOwner(t *testing.T) {
	token, err := IssueCsrfToken("anon:"+uuid.NewString(), testSecretKey)
	require.NoError(t, err)

	assert.Error(t, VerifyCsrfToken(token, "anon:"+uuid.NewString(), testSecretKey))
}

func TestCsrfTokenRejectsWrongKey(t *testing.T) {
	ownerKey := "user:" + uuid.NewString()
	token, err := IssueCsrfToken(ownerKey, testSecretKey)
	require.NoError(t, err)

	assert.Error(t, VerifyCsrfToken(token, ownerKey, "another-secret-key"))
}

func TestSessionTokenRoundTrip(t *testing.T) {
	subject := uuid.NewString()

	token, err := IssueSessionToken(subject, testSecretKey, time.Hour)
	require.NoError(t, err)

	got, err := verifySessionToken(token, testSecretKey)
	require.NoError(t, err)
	assert.Equal(t, subject, got)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	token, err := IssueSessionToken(uuid.NewString(), testSecretKey, -time.Minute)
	require.NoError(t, err)

	_, err = verifySessionToken(token, testSecretKey)
	assert.Error(t, err)
}

func TestSessionTokenRejectsTampered(t *testing.T) {
	token, err := IssueSessionToken(uuid.NewString(), testSecretKey, time.Hour)
	require.NoError(t, err)

	_, err = verifySessionToken(token+"x", testSecretKey)
	assert.Error(t, err)
}
