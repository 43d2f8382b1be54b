// internal/app/features/organizers/request.go
package organizers

import (
	"github.com/dalemusser/himatika/internal/app/features/shared"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type figureInput struct {
	Position string `json:"position"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

func (f figureInput) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Position, validation.Required),
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.Image, is.URL),
	)
}

func (f figureInput) model() models.Figure {
	return models.Figure{Position: f.Position, Name: f.Name, Image: f.Image}
}

type seatInput struct {
	Position string `json:"position"`
	NIM      int64  `json:"nim"`
}

func (s seatInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Position, validation.Required),
		validation.Field(&s.NIM, validation.Required),
	)
}

type departmentInput struct {
	Name        string  `json:"name"`
	Coordinator int64   `json:"coordinator"`
	Members     []int64 `json:"members"`
}

func (d departmentInput) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.Coordinator, validation.Required),
	)
}

// organizerRequest names every profile by NIM.
type organizerRequest struct {
	Council            []figureInput      `json:"council"`
	Advisor            *figureInput       `json:"advisor"`
	ConsiderationBoard []int64            `json:"consideration_board"`
	DailyManagement    []seatInput        `json:"daily_management"`
	Department         []departmentInput  `json:"department"`
	Period             shared.PeriodInput `json:"period"`
}

func (r organizerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Council),
		validation.Field(&r.Advisor),
		validation.Field(&r.DailyManagement, validation.Required),
		validation.Field(&r.Department),
		validation.Field(&r.Period),
	)
}

func (r organizerRequest) nims() []int64 {
	out := append([]int64{}, r.ConsiderationBoard...)
	for _, s := range r.DailyManagement {
		out = append(out, s.NIM)
	}
	for _, d := range r.Department {
		out = append(out, d.Coordinator)
		out = append(out, d.Members...)
	}
	return out
}

func (r organizerRequest) toModel(ids map[int64]primitive.ObjectID) models.Organizer {
	o := models.Organizer{
		DailyManagement: make([]models.DailyManagement, 0, len(r.DailyManagement)),
		Department:      make([]models.Department, 0, len(r.Department)),
		Period:          r.Period.Model(),
	}
	for _, f := range r.Council {
		o.Council = append(o.Council, f.model())
	}
	if r.Advisor != nil {
		a := r.Advisor.model()
		o.Advisor = &a
	}
	for _, n := range r.ConsiderationBoard {
		o.ConsiderationBoard = append(o.ConsiderationBoard, ids[n])
	}
	for _, s := range r.DailyManagement {
		o.DailyManagement = append(o.DailyManagement, models.DailyManagement{Position: s.Position, ProfileID: ids[s.NIM]})
	}
	for _, d := range r.Department {
		members := make([]primitive.ObjectID, 0, len(d.Members))
		for _, n := range d.Members {
			members = append(members, ids[n])
		}
		o.Department = append(o.Department, models.Department{Name: d.Name, Coordinator: ids[d.Coordinator], Members: members})
	}
	return o
}
