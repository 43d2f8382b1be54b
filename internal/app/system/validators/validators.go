// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/himatika/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Accounts
	ensure("users", usersSchema())
	ensure("profiles", profilesSchema())
	ensure("sessions", sessionsSchema())

	// Role records
	ensure("administrators", periodSchema("members"))
	ensure("departements", periodSchema("profile_id", "departement"))
	ensure("organizers", periodSchema("daily_management", "department"))

	// Content
	ensure("agendas", agendaSchema())
	ensure("events", agendaSchema())
	ensure("projects", projectSchema())
	ensure("posts", postSchema("categories"))
	ensure("news", postSchema("category", "tags"))
	ensure("photos", photoSchema())
	ensure("questions", voteSchema("title", "body"))
	ensure("answers", voteSchema("question_id", "body"))

	// No validators needed; we still ensure the collections exist.
	ensure("site_config", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func object(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func roleEnum() bson.M {
	vals := bson.A{}
	for _, r := range models.AllRoles {
		vals = append(vals, string(r))
	}
	return bson.M{"enum": vals}
}

func usersSchema() bson.M {
	return object(bson.A{"username", "password_hash", "profile_id"}, bson.M{
		"username":      nonBlank,
		"password_hash": nonBlank,
		"profile_id":    bson.M{"bsonType": "objectId"},
	})
}

func profilesSchema() bson.M {
	return object(bson.A{"nim", "full_name", "status"}, bson.M{
		"nim":          bson.M{"bsonType": bson.A{"int", "long"}},
		"full_name":    nonBlank,
		"full_name_ci": bson.M{"bsonType": "string"},
		"email":        bson.M{"bsonType": bson.A{"string", "null"}},
		"semester":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
		"status": bson.M{"enum": bson.A{
			models.ProfileActive, models.ProfileInactive, models.ProfileFree, models.ProfileDeleted,
		}},
	})
}

func sessionsSchema() bson.M {
	return object(bson.A{"user_id", "token_hash", "refresh_hash", "created_at"}, bson.M{
		"user_id":      bson.M{"bsonType": "objectId"},
		"token_hash":   nonBlank,
		"refresh_hash": nonBlank,
		"created_at":   bson.M{"bsonType": "date"},
	})
}

// periodSchema requires a period whose bounds are dates plus the listed
// fields.
func periodSchema(fields ...string) bson.M {
	required := bson.A{"period"}
	for _, f := range fields {
		required = append(required, f)
	}
	return object(required, bson.M{
		"period": bson.M{
			"bsonType": "object",
			"required": bson.A{"start", "end"},
			"properties": bson.M{
				"start": bson.M{"bsonType": "date"},
				"end":   bson.M{"bsonType": "date"},
			},
		},
	})
}

func agendaSchema() bson.M {
	return object(bson.A{"title", "date", "can_see", "can_register"}, bson.M{
		"title":        nonBlank,
		"date":         bson.M{"bsonType": "date"},
		"can_see":      roleEnum(),
		"can_register": roleEnum(),
		"committee":    bson.M{"bsonType": "array"},
		"registered":   bson.M{"bsonType": "array"},
	})
}

func projectSchema() bson.M {
	return object(bson.A{"title", "deadline", "can_see", "can_register"}, bson.M{
		"title":        nonBlank,
		"deadline":     bson.M{"bsonType": "date"},
		"can_see":      roleEnum(),
		"can_register": roleEnum(),
		"contributors": bson.M{"bsonType": "array"},
		"tasks":        bson.M{"bsonType": "array"},
		"registered":   bson.M{"bsonType": "array"},
	})
}

func postSchema(extra ...string) bson.M {
	required := bson.A{"title", "slug", "body", "author_id", "published"}
	for _, f := range extra {
		required = append(required, f)
	}
	return object(required, bson.M{
		"title":     nonBlank,
		"slug":      bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
		"author_id": bson.M{"bsonType": "objectId"},
		"published": bson.M{"bsonType": "bool"},
	})
}

func photoSchema() bson.M {
	return object(bson.A{"title", "image"}, bson.M{
		"title": nonBlank,
		"image": nonBlank,
	})
}

func voteSchema(required ...string) bson.M {
	req := bson.A{"votes", "total_votes"}
	for _, f := range required {
		req = append(req, f)
	}
	return object(req, bson.M{
		"votes": bson.M{
			"bsonType": "array",
			"items": bson.M{
				"bsonType": "object",
				"required": bson.A{"profile_id", "vote_type"},
				"properties": bson.M{
					"vote_type": bson.M{"enum": bson.A{models.VoteUp, models.VoteDown}},
				},
			},
		},
		"total_votes": bson.M{"bsonType": bson.A{"int", "long"}},
	})
}
