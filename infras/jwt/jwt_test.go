package jwt_test

import (
	"testing"

	"travelo/config"
	"travelo/infras/jwt"
	"travelo/infras/jwt/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var _ jwt.JWT = (*mocks.MockJWT)(nil)

func newService() jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "travelo"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg)
}

var subject = jwt.Subject{
	UserID:         "0b1f6c8e-8a57-4f0e-9d7e-9c7c4f3a2b11",
	OrganizationID: "6f0d6f7a-2c1e-4d8b-8a41-0e5c1b9f7d22",
	Email:          "traveler@acme.io",
	Role:           "traveler",
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(15*60), pair.ExpiresIn)

	claims, err := svc.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Identity())
	assert.Equal(t, "travelo", claims.Issuer)

	_, err = svc.ValidateToken(pair.AccessToken, jwt.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken, "access token is signed with the access secret")

	_, err = svc.ValidateToken("garbage", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestRefreshTokenCannotAuthenticate(t *testing.T) {
	svc := newService()

	pair, err := svc.GenerateTokenPair(subject)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.RefreshToken, jwt.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Identity())

	_, err = svc.ValidateToken(pair.RefreshToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		expected    string
		expectError bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", expected: "abc.def.ghi"},
		{name: "empty header", header: "", expectError: true},
		{name: "missing scheme", header: "abc.def.ghi", expectError: true},
		{name: "scheme only", header: "Bearer ", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.ExtractTokenFromHeader(tt.header)

			if tt.expectError {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestValidateToken_ForeignIssuer(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Name = "another-service"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	pair, err := jwt.New(cfg).GenerateTokenPair(subject)
	require.NoError(t, err)

	_, err = newService().ValidateToken(pair.AccessToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestMockJWT_ReturnsDomainTypes(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockJWT(ctrl)

	subject := jwt.Subject{UserID: "u1", OrganizationID: "o1", Email: "t@acme.test", Role: "traveler"}

	mock.EXPECT().GenerateTokenPair(subject).Return(&jwt.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil)
	mock.EXPECT().ValidateToken("a", jwt.AccessToken).Return(&jwt.Claims{UserID: "u1"}, nil)

	pair, err := mock.GenerateTokenPair(subject)
	require.NoError(t, err)

	claims, err := mock.ValidateToken(pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
}
