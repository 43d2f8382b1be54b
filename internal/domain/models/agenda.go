// internal/domain/models/agenda.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Agenda is a dated activity. Events share the same shape and are kept in
// their own collection.
type Agenda struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Date        time.Time          `bson:"date" json:"date"`
	At          string             `bson:"at" json:"at"`
	Description string             `bson:"description" json:"description"`
	CanSee      Role               `bson:"can_see" json:"can_see"`
	CanRegister Role               `bson:"can_register" json:"can_register"`
	Committee   []Committee        `bson:"committee" json:"committee"`
	Registered  []Registered       `bson:"registered" json:"registered"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Committee is a profile holding a job on an agenda.
type Committee struct {
	Job       string             `bson:"job" json:"job"`
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
}

// Registered is a profile signed up for an agenda or project.
type Registered struct {
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Task      string             `bson:"task,omitempty" json:"task,omitempty"`
}

// IsRegistered reports whether profileID already appears in rs.
func IsRegistered(rs []Registered, profileID primitive.ObjectID) bool {
	for _, r := range rs {
		if r.ProfileID == profileID {
			return true
		}
	}
	return false
}
