package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/notemarket/internal/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestVerifier_RoundTrip(t *testing.T) {
	signer := auth.NewSigner(secret, "notemarket", "notemarket-api")
	verifier := auth.NewVerifier(secret, "notemarket", "notemarket-api")

	id := uuid.New()
	token, err := signer.Sign(id, "jane@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestVerifier_Rejects(t *testing.T) {
	verifier := auth.NewVerifier(secret, "notemarket", "notemarket-api")
	id := uuid.New()

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name: "Expired",
			token: func() string {
				s, _ := auth.NewSigner(secret, "notemarket", "notemarket-api").Sign(id, "", -time.Minute)
				return s
			},
		},
		{
			name: "WrongSecret",
			token: func() string {
				s, _ := auth.NewSigner("another-secret-another-secret-xx", "notemarket", "notemarket-api").Sign(id, "", time.Hour)
				return s
			},
		},
		{
			name: "WrongIssuer",
			token: func() string {
				s, _ := auth.NewSigner(secret, "someone-else", "notemarket-api").Sign(id, "", time.Hour)
				return s
			},
		},
		{
			name: "WrongAudience",
			token: func() string {
				s, _ := auth.NewSigner(secret, "notemarket", "other-api").Sign(id, "", time.Hour)
				return s
			},
		},
		{
			name:  "Garbage",
			token: func() string { return "not-a-jwt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token())
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestRole_Capabilities(t *testing.T) {
	assert.True(t, auth.RoleInvestor.Can(auth.CapInquire))
	assert.False(t, auth.RoleInvestor.Can(auth.CapSell))
	assert.True(t, auth.RoleSeller.Can(auth.CapSell))
	assert.False(t, auth.RoleSeller.Can(auth.CapInquire))
	assert.True(t, auth.RoleAdmin.Can(auth.CapReview))
	assert.False(t, auth.RoleAdmin.Can(auth.CapInquire))
	assert.False(t, auth.Role("guest").Can(auth.CapInquire))
	assert.False(t, auth.Role("guest").Valid())

	s := auth.Session{Role: auth.RoleSeller}
	assert.NoError(t, s.Require(auth.CapSell))
	assert.Error(t, s.Require(auth.CapReview))
}
