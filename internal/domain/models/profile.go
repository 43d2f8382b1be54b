// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile status values.
const (
	ProfileActive   = "active"
	ProfileInactive = "inactive"
	ProfileFree     = "free"
	ProfileDeleted  = "deleted"
)

// IsValidProfileStatus reports whether s is a known profile status.
func IsValidProfileStatus(s string) bool {
	switch s {
	case ProfileActive, ProfileInactive, ProfileFree, ProfileDeleted:
		return true
	}
	return false
}

// Profile is a member record keyed by NIM. Users link to exactly one Profile.
type Profile struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	NIM        int64              `bson:"nim" json:"nim"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Class      string             `bson:"class" json:"class"`
	Semester   int                `bson:"semester" json:"semester"`
	Birth      Birth              `bson:"birth" json:"birth"`
	Sex        string             `bson:"sex" json:"sex"` // female | male
	Religion   string             `bson:"religion" json:"religion"`
	Citizen    string             `bson:"citizen" json:"citizen"`
	Phone      string             `bson:"phone" json:"phone"`
	Email      string             `bson:"email" json:"email"`
	Address    Address            `bson:"address" json:"address"`
	Status     string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EnteredYear is the year the profile was first recorded.
func (p Profile) EnteredYear() int {
	return p.CreatedAt.Year()
}

// Birth holds place and date of birth.
type Birth struct {
	Place string    `bson:"place" json:"place"`
	Date  time.Time `bson:"date" json:"date"`
}

// Address is a postal address embedded in Profile.
type Address struct {
	FullAddress string `bson:"full_address" json:"full_address"`
	Village     string `bson:"village" json:"village"`
	District    string `bson:"district" json:"district"`
	City        string `bson:"city" json:"city"`
	Province    string `bson:"province" json:"province"`
	Country     string `bson:"country" json:"country"`
	Zip         int    `bson:"zip" json:"zip"`
}

// ProfileSummary is the public subset shown next to committees, authors and registrants.
type ProfileSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	NIM      int64              `bson:"nim" json:"nim"`
	FullName string             `bson:"full_name" json:"full_name"`
	Avatar   string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Class    string             `bson:"class" json:"class"`
	Semester int                `bson:"semester" json:"semester"`
}
