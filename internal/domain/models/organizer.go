// internal/domain/models/organizer.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ChairmanPositions are the daily-management positions allowed to open the
// next organizer period.
var ChairmanPositions = []string{"Ketua", "Chairman", "Leader"}

// Organizer is the organizing committee of one period.
type Organizer struct {
	ID                 primitive.ObjectID   `bson:"_id" json:"id"`
	Council            []Figure             `bson:"council,omitempty" json:"council,omitempty"`
	Advisor            *Figure              `bson:"advisor,omitempty" json:"advisor,omitempty"`
	ConsiderationBoard []primitive.ObjectID `bson:"consideration_board,omitempty" json:"consideration_board,omitempty"`
	DailyManagement    []DailyManagement    `bson:"daily_management" json:"daily_management"`
	Department         []Department         `bson:"department" json:"department"`
	Period             Period               `bson:"period" json:"period"`
}

// Figure is a named position that is not tied to a profile (council, advisor).
type Figure struct {
	Position string `bson:"position" json:"position"`
	Name     string `bson:"name" json:"name"`
	Image    string `bson:"image,omitempty" json:"image,omitempty"`
}

// DailyManagement is one daily-management seat.
type DailyManagement struct {
	Position  string             `bson:"position" json:"position"`
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
}

// Department lists the coordinator and members of one department.
type Department struct {
	Name        string               `bson:"name" json:"name"`
	Coordinator primitive.ObjectID   `bson:"coordinator" json:"coordinator"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
}

// PositionOf returns the daily-management position held by profileID.
func (o Organizer) PositionOf(profileID primitive.ObjectID) string {
	for _, d := range o.DailyManagement {
		if d.ProfileID == profileID {
			return d.Position
		}
	}
	return ""
}

// CoordinatorOf returns the department profileID coordinates, if any.
func (o Organizer) CoordinatorOf(profileID primitive.ObjectID) string {
	for _, d := range o.Department {
		if d.Coordinator == profileID {
			return d.Name
		}
	}
	return ""
}

// MemberOf returns the department profileID is a member of, if any.
func (o Organizer) MemberOf(profileID primitive.ObjectID) string {
	for _, d := range o.Department {
		for _, m := range d.Members {
			if m == profileID {
				return d.Name
			}
		}
	}
	return ""
}

// IsChairman reports whether position is one of ChairmanPositions.
func IsChairman(position string) bool {
	for _, p := range ChairmanPositions {
		if p == position {
			return true
		}
	}
	return false
}
