package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cure-enough", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3cure-enough", hash)

	require.True(t, CheckPassword(hash, "s3cure-enough"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "s3cure-enough"))
	require.False(t, CheckDummyPassword("anything"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attrs    []string
		want     []string
	}{
		{"ok", "violet-harbor-42", []string{"anna@example.com", "Anna Schmidt"}, nil},
		{"short", "x7!kq", nil, []string{MsgPasswordTooShort}},
		{"numeric", "4815162342", nil, []string{MsgPasswordNumeric}},
		{"common", "Password123", nil, []string{MsgPasswordCommon}},
		{"short and numeric", "1234", nil, []string{MsgPasswordTooShort, MsgPasswordNumeric}},
		{"contains email local part", "schmidt-2024!", []string{"schmidt@example.com"}, []string{MsgPasswordTooSimilar}},
		{"contains name word", "xx-kowalski-xx", []string{"jan@example.com", "Jan Kowalski"}, []string{MsgPasswordTooSimilar}},
		{"email domain ignored", "exampleorchid", []string{"jan@example.com"}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ValidatePassword(tc.password, tc.attrs...))
		})
	}
}
