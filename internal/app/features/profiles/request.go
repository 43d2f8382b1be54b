// internal/app/features/profiles/request.go
package profiles

import (
	"regexp"
	"time"

	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,20}$`)

// personalFields are the profile fields a member may edit on their own
// profile. Status and NIM are not among them.
type personalFields struct {
	FullName string         `json:"full_name"`
	Avatar   string         `json:"avatar"`
	Class    string         `json:"class"`
	Semester int            `json:"semester"`
	Birth    models.Birth   `json:"birth"`
	Sex      string         `json:"sex"`
	Religion string         `json:"religion"`
	Citizen  string         `json:"citizen"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email"`
	Address  models.Address `json:"address"`
}

func (f personalFields) errors() validation.Errors {
	return validation.Errors{
		"full_name": validation.Validate(f.FullName, validation.Required, validation.Length(1, 200)),
		"avatar":    validation.Validate(f.Avatar, is.URL),
		"class":     validation.Validate(f.Class, validation.Length(0, 10)),
		"semester":  validation.Validate(f.Semester, validation.Min(0), validation.Max(14)),
		"sex":       validation.Validate(f.Sex, validation.In("female", "male")),
		"phone":     validation.Validate(f.Phone, validation.Match(phonePattern).Error("must contain digits only, optionally led by +")),
		"email":     validation.Validate(f.Email, is.Email),
		"birth":     validation.Validate(f.Birth.Date, validation.Max(time.Now())),
		"zip":       validation.Validate(f.Address.Zip, validation.Min(0), validation.Max(99999)),
	}
}

func (f personalFields) Validate() error {
	return f.errors().Filter()
}

func (f personalFields) apply(p *models.Profile) {
	p.FullName = f.FullName
	p.Avatar = f.Avatar
	p.Class = f.Class
	p.Semester = f.Semester
	p.Birth = f.Birth
	p.Sex = f.Sex
	p.Religion = f.Religion
	p.Citizen = f.Citizen
	p.Phone = f.Phone
	p.Email = f.Email
	p.Address = f.Address
}

// createRequest is the administrator's POST / body.
type createRequest struct {
	NIM    int64  `json:"nim"`
	Status string `json:"status"`
	personalFields
}

func (r createRequest) Validate() error {
	errs := r.personalFields.errors()
	errs["nim"] = validation.Validate(r.NIM, validation.Required, validation.Min(int64(1)))
	errs["status"] = validation.Validate(r.Status,
		validation.In(models.ProfileActive, models.ProfileInactive, models.ProfileFree))
	return errs.Filter()
}

// adminUpdateRequest is the administrator's PUT /{nim} body. An empty
// status leaves it unchanged.
type adminUpdateRequest struct {
	Status string `json:"status"`
	personalFields
}

func (r adminUpdateRequest) Validate() error {
	errs := r.personalFields.errors()
	errs["status"] = validation.Validate(r.Status,
		validation.In(models.ProfileActive, models.ProfileInactive, models.ProfileFree, models.ProfileDeleted))
	return errs.Filter()
}
