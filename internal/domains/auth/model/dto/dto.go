package dto

import (
	"strings"
	"time"

	"travelo/infras/jwt"
	orgModel "travelo/internal/domains/organization/model"
	userModel "travelo/internal/domains/user/model"
	"travelo/shared/constant"
	gModel "travelo/shared/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterRequest signs up an organization together with its first company admin.
type RegisterRequest struct {
	OrganizationName string  `json:"organization_name"   validate:"required,min=2,max=150"`
	Email            string  `json:"email"               validate:"required,email"`
	Password         string  `json:"password"            validate:"required,min=8"`
	FullName         *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=150"`
}

func (r *RegisterRequest) ToOrganizationModel(now time.Time) orgModel.Organization {
	return orgModel.Organization{
		ID:               uuid.NewString(),
		Name:             r.OrganizationName,
		TotalCredits:     decimal.Zero,
		AvailableCredits: decimal.Zero,
		UsedCredits:      decimal.Zero,
		AllocatedCredits: decimal.Zero,
		Metadata:         gModel.NewMetadata(constant.ContextGuest, now),
	}
}

func (r *RegisterRequest) ToUserModel(organizationID, hashedPassword string, now time.Time) userModel.User {
	return userModel.User{
		ID:               uuid.NewString(),
		OrganizationID:   organizationID,
		Email:            strings.ToLower(r.Email),
		Password:         hashedPassword,
		FullName:         r.FullName,
		Role:             constant.RoleCompanyAdmin,
		CreditLimit:      decimal.Zero,
		AvailableCredits: decimal.Zero,
		Active:           true,
		Metadata:         gModel.NewMetadata(constant.ContextGuest, now),
	}
}

type RegisterResponse struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	LoginResponse
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"last_login" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.TokenType = tokenPair.TokenType
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,nefield=CurrentPassword"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required,min=8"`
}
