package password_test

import (
	"strings"
	"testing"

	"travelo/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		expectedError error
		expectError   bool
	}{
		{name: "valid password", password: "validPassword123"},
		{name: "short password", password: "abc"},
		{name: "unicode password", password: "pässwörd-旅行"},
		{name: "empty password", password: "", expectError: true, expectedError: password.ErrEmptyPassword},
		{name: "longer than bcrypt limit", password: strings.Repeat("a", 73), expectError: true, expectedError: password.ErrTooLong},
		{name: "exactly bcrypt limit", password: strings.Repeat("a", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)

			if tt.expectError {
				assert.Error(t, err)
				assert.Empty(t, hash)

				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			assert.Equal(t, password.DefaultCost, cost)
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := password.Hash("same-password")
	require.NoError(t, err)

	second, err := password.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)

	tests := []struct {
		name          string
		password      string
		hash          string
		expectedError error
		expectError   bool
	}{
		{name: "matching password", password: "correct-horse", hash: hash},
		{name: "wrong password", password: "battery-staple", hash: hash, expectError: true, expectedError: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, expectError: true, expectedError: password.ErrInvalidPassword},
		{name: "empty hash", password: "correct-horse", hash: "", expectError: true, expectedError: password.ErrInvalidPassword},
		{name: "malformed hash", password: "correct-horse", hash: "not-a-bcrypt-hash", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			if !tt.expectError {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			}
		})
	}
}

func TestReject(t *testing.T) {
	assert.ErrorIs(t, password.Reject("anything"), password.ErrInvalidPassword)
	assert.ErrorIs(t, password.Reject(""), password.ErrInvalidPassword)
}
