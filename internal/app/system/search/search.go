// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter builds a case-insensitive substring match of q across fields.
// The query is quoted so user input is never interpreted as a pattern.
// Returns nil when q is blank or no fields are given.
//
// Typical usage in list handlers:
//
//	if f := search.Filter(q, "title", "description"); f != nil {
//	    filter["$and"] = append(filter["$and"].([]bson.M), f)
//	}
func Filter(q string, fields ...string) bson.M {
	q = strings.TrimSpace(q)
	if q == "" || len(fields) == 0 {
		return nil
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	or := make([]bson.M, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}

// WithNumeric extends f with an exact match on numericField when q parses
// as an integer (e.g. searching profiles by NIM).
func WithNumeric(f bson.M, q, numericField string) bson.M {
	n, err := strconv.ParseInt(strings.TrimSpace(q), 10, 64)
	if err != nil || numericField == "" {
		return f
	}
	exact := bson.M{numericField: n}
	if f == nil {
		return exact
	}
	or, _ := f["$or"].([]bson.M)
	return bson.M{"$or": append(or, exact)}
}

// Value converts a raw filter value into the typed form stored in Mongo.
// Booleans become bool and integers match either the numeric or string form.
func Value(raw string) interface{} {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return bson.M{"$in": bson.A{n, raw}}
	}
	return raw
}
