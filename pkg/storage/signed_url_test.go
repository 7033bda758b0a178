package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndVerify(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("teacher-uuid", "3f2a.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	claims, err := signer.Verify("teacher-uuid", token)
	require.NoError(t, err)
	require.Equal(t, "3f2a.pdf", claims.SavedName)
	require.Equal(t, "teacher-uuid", claims.Owner)
	require.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestSignedURLSignerRejectsOtherOwner(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("teacher-a", "file.pdf")
	require.NoError(t, err)

	_, err = signer.Verify("teacher-b", token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = signer.Verify("teacher-a", token+"0")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = signer.Verify("teacher-a", "garbage")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Now()
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("teacher-uuid", "file.pdf")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = signer.Verify("teacher-uuid", token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestSignedURLSignerRequiresSecret(t *testing.T) {
	signer := NewSignedURLSigner("", time.Minute)
	_, _, err := signer.Generate("teacher-uuid", "file.pdf")
	require.Error(t, err)
}
