// internal/domain/models/administrator.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Administrator is the board of one administrative period.
type Administrator struct {
	ID      primitive.ObjectID    `bson:"_id" json:"id"`
	Members []AdministratorMember `bson:"members" json:"members"`
	Period  Period                `bson:"period" json:"period"`
}

// AdministratorMember ties a profile to a board role.
type AdministratorMember struct {
	Role      string             `bson:"role" json:"role"`
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
}

// RoleOf returns the role held by profileID in this record.
func (a Administrator) RoleOf(profileID primitive.ObjectID) (string, bool) {
	for _, m := range a.Members {
		if m.ProfileID == profileID {
			return m.Role, true
		}
	}
	return "", false
}

// Departement records one profile's departement for a period.
type Departement struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	ProfileID   primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Departement string             `bson:"departement" json:"departement"`
	Period      Period             `bson:"period" json:"period"`
}
