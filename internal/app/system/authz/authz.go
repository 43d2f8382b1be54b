// Package authz answers "what roles does this profile hold right now".
// Every answer is computed from the administrator, departement and
// organizer records whose period has not ended.
package authz

import (
	"context"
	"errors"
	"fmt"
	"time"

	administratorstore "github.com/dalemusser/himatika/internal/app/store/administrators"
	departementstore "github.com/dalemusser/himatika/internal/app/store/departements"
	organizerstore "github.com/dalemusser/himatika/internal/app/store/organizers"
	"github.com/dalemusser/himatika/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdministratorFact is the profile's seat on the current administrator board.
type AdministratorFact struct {
	Role   string        `json:"role"`
	Period models.Period `json:"period"`
}

// DepartementFact is the profile's current departement.
type DepartementFact struct {
	Name   string        `json:"name"`
	Period models.Period `json:"period"`
}

// OrganizerFact is the profile's place in the current organizer record.
type OrganizerFact struct {
	ID            primitive.ObjectID `json:"id"`
	Period        models.Period      `json:"period"`
	Position      string             `json:"position,omitempty"`
	CoordinatorOf string             `json:"coordinatorOf,omitempty"`
	MemberOf      string             `json:"memberOf,omitempty"`
}

// Facts is the set of current roles for one profile. A nil field means
// the profile holds no such role.
type Facts struct {
	Administrator *AdministratorFact `json:"administrator,omitempty"`
	Departement   *DepartementFact   `json:"departement,omitempty"`
	Organizer     *OrganizerFact     `json:"organizer,omitempty"`
}

// IsAdministrator reports a seat on a current administrator board.
func (f Facts) IsAdministrator() bool { return f.Administrator != nil }

// IsDepartement reports a current departement record, or a department
// coordinator or member seat in the current organizer record.
func (f Facts) IsDepartement() bool {
	if f.Departement != nil {
		return true
	}
	return f.Organizer != nil && (f.Organizer.CoordinatorOf != "" || f.Organizer.MemberOf != "")
}

// HasOrganizerRole reports any organizing role: a seat in the current
// organizer record, an administrator seat or a departement record.
func (f Facts) HasOrganizerRole() bool {
	return f.Organizer != nil || f.Administrator != nil || f.Departement != nil
}

// Administrators is the slice of the administrator store the resolver needs.
type Administrators interface {
	FindCurrentRole(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (string, models.Period, error)
}

// Departements is the slice of the departement store the resolver needs.
type Departements interface {
	FindCurrent(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (*models.Departement, error)
}

// Organizers is the slice of the organizer store the resolver needs.
type Organizers interface {
	FindCurrentForProfile(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (*models.Organizer, error)
}

// Resolver computes Facts from the three role stores.
type Resolver struct {
	admins Administrators
	deps   Departements
	orgs   Organizers
}

// NewResolver builds a Resolver over explicit stores.
func NewResolver(admins Administrators, deps Departements, orgs Organizers) *Resolver {
	return &Resolver{admins: admins, deps: deps, orgs: orgs}
}

// NewMongoResolver builds a Resolver over the Mongo-backed stores in db.
func NewMongoResolver(db *mongo.Database) *Resolver {
	return NewResolver(administratorstore.New(db), departementstore.New(db), organizerstore.New(db))
}

// Facts returns the roles profileID holds as of asOf.
func (r *Resolver) Facts(ctx context.Context, profileID primitive.ObjectID, asOf time.Time) (Facts, error) {
	var f Facts

	role, period, err := r.admins.FindCurrentRole(ctx, profileID, asOf)
	switch {
	case err == nil:
		f.Administrator = &AdministratorFact{Role: role, Period: period}
	case !errors.Is(err, administratorstore.ErrNotFound):
		return Facts{}, fmt.Errorf("administrator role: %w", err)
	}

	d, err := r.deps.FindCurrent(ctx, profileID, asOf)
	switch {
	case err == nil:
		f.Departement = &DepartementFact{Name: d.Departement, Period: d.Period}
	case !errors.Is(err, departementstore.ErrNotFound):
		return Facts{}, fmt.Errorf("departement: %w", err)
	}

	o, err := r.orgs.FindCurrentForProfile(ctx, profileID, asOf)
	switch {
	case err == nil:
		f.Organizer = &OrganizerFact{
			ID:            o.ID,
			Period:        o.Period,
			Position:      o.PositionOf(profileID),
			CoordinatorOf: o.CoordinatorOf(profileID),
			MemberOf:      o.MemberOf(profileID),
		}
	case !errors.Is(err, organizerstore.ErrNotFound):
		return Facts{}, fmt.Errorf("organizer: %w", err)
	}

	return f, nil
}
