package dto

import (
	"strings"
	"time"

	"travelo/internal/domains/user/model"
	"travelo/shared"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	gModel "travelo/shared/model"
	"travelo/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateUserRequest invites a user into the caller's organization. Credit is granted through the
// ledger afterwards, never at creation.
type CreateUserRequest struct {
	Email    string  `json:"email"               validate:"required,email"`
	Password string  `json:"password"            validate:"required,min=8"`
	Role     string  `json:"role"                validate:"omitempty,oneof=traveler manager company_admin"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=2,max=150"`
	PolicyID *string `json:"policy_id,omitempty" validate:"omitempty,uuid"`
}

func (r *CreateUserRequest) ToModel(organizationID, username, hashedPassword string) model.User {
	role := r.Role
	if role == "" {
		role = constant.RoleTraveler
	}

	return model.User{
		ID:               uuid.NewString(),
		OrganizationID:   organizationID,
		Email:            strings.ToLower(r.Email),
		Password:         hashedPassword,
		FullName:         r.FullName,
		Role:             role,
		CreditLimit:      decimal.Zero,
		AvailableCredits: decimal.Zero,
		PolicyID:         r.PolicyID,
		Active:           true,
		Metadata:         gModel.NewMetadata(username, timezone.Now()),
	}
}

type UpdateUserRequest struct {
	FullName *string `db:"full_name" json:"full_name,omitempty" validate:"omitempty,min=2,max=150"`
	Role     *string `db:"role"      json:"role,omitempty"      validate:"omitempty,oneof=traveler manager company_admin"`
	Active   *bool   `db:"active"    json:"active,omitempty"`
}

// AssignPolicyRequest sets or clears (null) the traveler's policy.
type AssignPolicyRequest struct {
	PolicyID *string `json:"policy_id" validate:"omitempty,uuid"`
}

type UserResponse struct {
	ID               string          `json:"id"`
	OrganizationID   string          `json:"organization_id"`
	Email            string          `json:"email"`
	FullName         *string         `json:"full_name,omitempty"`
	Role             string          `json:"role"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	AvailableCredits decimal.Decimal `json:"available_credits"`
	UsedCredits      decimal.Decimal `json:"used_credits"`
	PolicyID         *string         `json:"policy_id"`
	LastLogin        *string         `json:"last_login,omitempty"`
	Active           bool            `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.OrganizationID = model.OrganizationID
	r.Email = model.Email
	r.FullName = model.FullName
	r.Role = model.Role
	r.CreditLimit = model.CreditLimit
	r.AvailableCredits = model.AvailableCredits
	r.UsedCredits = model.UsedCredits()
	r.PolicyID = model.PolicyID
	r.Active = model.Active
	r.LastLogin = gDto.FormatOptionalTime(model.LastLogin)

	r.Metadata.FromModel(model.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login"`
}
