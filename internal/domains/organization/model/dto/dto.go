package dto

import (
	"travelo/internal/domains/organization/model"
	"travelo/shared"
	gDto "travelo/shared/dto"
	gModel "travelo/shared/model"
	"travelo/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=150"`
}

func (c *CreateOrganizationRequest) ToModel(user string) model.Organization {
	return model.Organization{
		ID:               uuid.NewString(),
		Name:             c.Name,
		TotalCredits:     decimal.Zero,
		AvailableCredits: decimal.Zero,
		UsedCredits:      decimal.Zero,
		AllocatedCredits: decimal.Zero,
		Metadata:         gModel.NewMetadata(user, timezone.Now()),
	}
}

type UpdateOrganizationRequest struct {
	Name string `db:"name" json:"name" validate:"required,min=2,max=150"`
}

// DefaultPolicyRequest sets the policy for travelers without one; null clears it.
type DefaultPolicyRequest struct {
	PolicyID *string `json:"policy_id" validate:"omitempty,uuid"`
}

type OrganizationResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	TotalCredits       decimal.Decimal `json:"total_credits"`
	AvailableCredits   decimal.Decimal `json:"available_credits"`
	UsedCredits        decimal.Decimal `json:"used_credits"`
	AllocatedCredits   decimal.Decimal `json:"allocated_credits"`
	UnallocatedCredits decimal.Decimal `json:"unallocated_credits"`
	DefaultPolicyID    *string         `json:"default_policy_id"`
	gDto.Metadata
}

func (r *OrganizationResponse) FromModel(model model.Organization) {
	r.ID = model.ID
	r.Name = model.Name
	r.TotalCredits = model.TotalCredits
	r.AvailableCredits = model.AvailableCredits
	r.UsedCredits = model.UsedCredits
	r.AllocatedCredits = model.AllocatedCredits
	r.UnallocatedCredits = model.UnallocatedCredits()
	r.DefaultPolicyID = model.DefaultPolicyID
	r.Metadata.FromModel(model.Metadata)
}

type GetOrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetOrganizationsResponse) FromModels(models []model.Organization, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Organizations = make([]OrganizationResponse, len(models))
	for i, mod := range models {
		r.Organizations[i].FromModel(mod)
	}
}
