package dto

import (
	"strings"

	"travelo/internal/domains/booking/model"
	"travelo/internal/domains/policy/engine"
	"travelo/shared"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	gModel "travelo/shared/model"
	"travelo/shared/timezone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	BookingType       string          `json:"booking_type"       validate:"required,oneof=flight hotel"`
	TotalPrice        decimal.Decimal `json:"total_price"        validate:"required,amount"`
	Currency          string          `json:"currency"           validate:"required,len=3"`
	CabinClass        string          `json:"cabin_class"        validate:"omitempty,max=32"`
	Nights            int             `json:"nights"             validate:"omitempty,min=0,max=365"`
	ExternalReference string          `json:"external_reference" validate:"omitempty,max=100"`
}

func (r *CheckoutRequest) ToEngine() engine.Request {
	return engine.Request{
		BookingType: engine.BookingType(r.BookingType),
		Amount:      r.TotalPrice,
		Currency:    r.Currency,
		CabinClass:  engine.CabinClass(r.CabinClass),
		Nights:      r.Nights,
	}
}

func (r *CheckoutRequest) ToModel(actor shared.Actor, policyID string, status model.Status) model.Booking {
	booking := model.Booking{
		ID:              uuid.NewString(),
		OrganizationID:  actor.OrganizationID,
		UserID:          actor.UserID,
		BookingType:     r.BookingType,
		TotalPrice:      r.TotalPrice,
		Currency:        strings.ToUpper(r.Currency),
		Status:          status,
		ConsumedCredits: decimal.Zero,
		Metadata:        gModel.NewMetadata(actor.Username(), timezone.Now()),
	}

	if policyID != constant.Empty {
		booking.PolicyID = &policyID
	}

	if r.CabinClass != constant.Empty {
		booking.CabinClass = &r.CabinClass
	}

	if r.Nights > 0 {
		booking.Nights = &r.Nights
	}

	if r.ExternalReference != constant.Empty {
		booking.ExternalReference = &r.ExternalReference
	}

	return booking
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type BookingResponse struct {
	ID                string          `json:"id"`
	OrganizationID    string          `json:"organization_id"`
	UserID            string          `json:"user_id"`
	PolicyID          *string         `json:"policy_id"`
	BookingType       string          `json:"booking_type"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	Currency          string          `json:"currency"`
	CabinClass        *string         `json:"cabin_class"`
	Nights            *int            `json:"nights"`
	Status            model.Status    `json:"status"`
	ConsumedCredits   decimal.Decimal `json:"consumed_credits"`
	ApprovedAt        *string         `json:"approved_at"`
	ApprovedBy        *string         `json:"approved_by"`
	RejectionReason   *string         `json:"rejection_reason"`
	ExternalReference *string         `json:"external_reference"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.OrganizationID = model.OrganizationID
	r.UserID = model.UserID
	r.PolicyID = model.PolicyID
	r.BookingType = model.BookingType
	r.TotalPrice = model.TotalPrice
	r.Currency = model.Currency
	r.CabinClass = model.CabinClass
	r.Nights = model.Nights
	r.Status = model.Status
	r.ConsumedCredits = model.ConsumedCredits
	r.ApprovedBy = model.ApprovedBy
	r.RejectionReason = model.RejectionReason
	r.ExternalReference = model.ExternalReference
	r.ApprovedAt = gDto.FormatOptionalTime(model.ApprovedAt)
	r.Metadata.FromModel(model.Metadata)
}

// CheckoutResponse carries the booking and the policy decision that shaped it.
type CheckoutResponse struct {
	Booking  BookingResponse `json:"booking"`
	Decision engine.Decision `json:"decision"`
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingFilter narrows a listing inside the caller's organization.
type BookingFilter struct {
	UserID      string
	Status      string
	BookingType string
}

const (
	EventApprovalRequested = "booking.approval_requested"
	EventConfirmed         = "booking.confirmed"
	EventRejected          = "booking.rejected"
	EventCancelled         = "booking.cancelled"
)

// Event is published to the booking topic once a status change commits.
type Event struct {
	BookingID       string          `json:"booking_id"`
	OrganizationID  string          `json:"organization_id"`
	UserID          string          `json:"user_id"`
	Status          model.Status    `json:"status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Currency        string          `json:"currency"`
	ConsumedCredits decimal.Decimal `json:"consumed_credits"`
	Rule            string          `json:"rule,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Actor           string          `json:"actor"`
	OccurredAt      string          `json:"occurred_at"`
}

func (e *Event) FromModel(booking model.Booking, actor string) {
	e.BookingID = booking.ID
	e.OrganizationID = booking.OrganizationID
	e.UserID = booking.UserID
	e.Status = booking.Status
	e.TotalPrice = booking.TotalPrice
	e.Currency = booking.Currency
	e.ConsumedCredits = booking.ConsumedCredits
	e.Actor = actor
	e.OccurredAt = gDto.FormatTime(booking.ModifiedAt)

	if booking.RejectionReason != nil {
		e.Reason = *booking.RejectionReason
	}
}
