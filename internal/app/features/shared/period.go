package shared

import (
	"time"

	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

// PeriodInput is the period of a new role record.
type PeriodInput struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (p PeriodInput) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Start, validation.Required),
		validation.Field(&p.End, validation.Required, validation.Min(p.Start).Error("must not be before start")),
	)
}

func (p PeriodInput) Model() models.Period {
	return models.Period{Start: p.Start.UTC(), End: p.End.UTC()}
}
