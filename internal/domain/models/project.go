// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is open for registration until its deadline.
type Project struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Deadline     time.Time          `bson:"deadline" json:"deadline"`
	Description  string             `bson:"description" json:"description"`
	CanSee       Role               `bson:"can_see" json:"can_see"`
	CanRegister  Role               `bson:"can_register" json:"can_register"`
	Contributors []Contributor      `bson:"contributors" json:"contributors"`
	Tasks        []string           `bson:"tasks" json:"tasks"`
	Registered   []Registered       `bson:"registered" json:"registered"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Contributor is a profile working on a project.
type Contributor struct {
	Job       string             `bson:"job" json:"job"`
	ProfileID primitive.ObjectID `bson:"profile_id" json:"profile_id"`
}
