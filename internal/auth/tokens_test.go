package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueVerify(t *testing.T) {
	userID := uuid.New()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	issuer := NewTokens("s3cret", time.Hour)
	issuer.now = func() time.Time { return base }
	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	testCases := map[string]struct {
		verifier      *Tokens
		token         string
		expectedError bool
	}{
		"should accept a fresh token": {
			verifier: &Tokens{Secret: []byte("s3cret"), Issuer: DefaultIssuer, now: func() time.Time { return base.Add(time.Minute) }},
			token:    token,
		},
		"should reject an expired token": {
			verifier:      &Tokens{Secret: []byte("s3cret"), Issuer: DefaultIssuer, now: func() time.Time { return base.Add(2 * time.Hour) }},
			token:         token,
			expectedError: true,
		},
		"should reject a token signed with another secret": {
			verifier:      &Tokens{Secret: []byte("other"), Issuer: DefaultIssuer, now: func() time.Time { return base }},
			token:         token,
			expectedError: true,
		},
		"should reject a token from another issuer": {
			verifier:      &Tokens{Secret: []byte("s3cret"), Issuer: "someone-else", now: func() time.Time { return base }},
			token:         token,
			expectedError: true,
		},
		"should reject garbage": {
			verifier:      &Tokens{Secret: []byte("s3cret"), Issuer: DefaultIssuer},
			token:         "not.a.jwt",
			expectedError: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := tc.verifier.Verify(tc.token)
			if tc.expectedError {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Equal(t, uuid.Nil, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, got)
		})
	}
}

func TestTokens_RejectsNoneAlgorithm(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    DefaultIssuer,
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("s3cret", time.Hour).Verify(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
