// internal/domain/models/siteconfig.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SiteConfig lists the daily-management positions and departments offered
// when building organizer records. The newest document is authoritative.
type SiteConfig struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	DailyManagements []string           `bson:"daily_managements" json:"daily_managements"`
	Departments      []string           `bson:"departments" json:"departments"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}
