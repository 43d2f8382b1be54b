// internal/domain/models/period.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Period bounds an organizer, administrator or departement record.
type Period struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// IsCurrent reports whether the period has not ended as of t.
func (p Period) IsCurrent(t time.Time) bool {
	return !p.End.Before(t)
}

// CurrentPeriodFilter is the single "period has not ended" filter used by
// every role lookup. Records whose period.end is at or after asOf qualify.
func CurrentPeriodFilter(asOf time.Time) bson.M {
	return bson.M{"period.end": bson.M{"$gte": asOf}}
}
