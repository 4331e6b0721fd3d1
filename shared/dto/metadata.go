package dto

import (
	"time"
	"travelo/shared/constant"
	"travelo/shared/model"
	"travelo/shared/timezone"
)

// Metadata is the audit trail every resource carries, rendered in the service timezone.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by"`
	ModifiedBy string `json:"modified_by"`
}

func (m *Metadata) FromModel(meta model.Metadata) {
	*m = Metadata{
		CreatedAt:  FormatTime(meta.CreatedAt),
		ModifiedAt: FormatTime(meta.ModifiedAt),
		CreatedBy:  meta.CreatedBy,
		ModifiedBy: meta.ModifiedBy,
	}
}

func FormatTime(t time.Time) string {
	return timezone.Format(t, constant.DateFormat)
}

// FormatOptionalTime keeps unset timestamps out of responses.
func FormatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}

	formatted := FormatTime(*t)

	return &formatted
}
