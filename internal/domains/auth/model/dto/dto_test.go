package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"travelo/infras/jwt"
	"travelo/internal/domains/auth/model/dto"
	"travelo/shared/constant"
	"travelo/shared/timezone"
)

func TestLoginResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.LoginResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, "Bearer", response.TokenType)
	assert.Equal(t, int64(900), response.ExpiresIn)
}

func TestRegisterRequest_Models(t *testing.T) {
	now := timezone.Now()
	name := "Ana Lima"

	req := dto.RegisterRequest{
		OrganizationName: "Acme",
		Email:            "Ana@Acme.TEST",
		Password:         "s3cret-pass",
		FullName:         &name,
	}

	org := req.ToOrganizationModel(now)
	user := req.ToUserModel(org.ID, "hashed", now)

	assert.Equal(t, "Acme", org.Name)
	assert.True(t, org.TotalCredits.IsZero())
	assert.Equal(t, org.ID, user.OrganizationID)
	assert.Equal(t, "ana@acme.test", user.Email)
	assert.Equal(t, "hashed", user.Password)
	assert.Equal(t, constant.RoleCompanyAdmin, user.Role)
	assert.True(t, user.Active)
	assert.Equal(t, now, user.CreatedAt)
}
