// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	administratorstore "github.com/dalemusser/himatika/internal/app/store/administrators"
	agendastore "github.com/dalemusser/himatika/internal/app/store/agendas"
	"github.com/dalemusser/himatika/internal/app/store/audit"
	departementstore "github.com/dalemusser/himatika/internal/app/store/departements"
	newsstore "github.com/dalemusser/himatika/internal/app/store/news"
	organizerstore "github.com/dalemusser/himatika/internal/app/store/organizers"
	photostore "github.com/dalemusser/himatika/internal/app/store/photos"
	poststore "github.com/dalemusser/himatika/internal/app/store/posts"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	projectstore "github.com/dalemusser/himatika/internal/app/store/projects"
	questionstore "github.com/dalemusser/himatika/internal/app/store/questions"
	"github.com/dalemusser/himatika/internal/app/store/sessions"
	siteconfigstore "github.com/dalemusser/himatika/internal/app/store/siteconfig"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ensurer is implemented by every store that owns indexes.
type ensurer interface {
	EnsureIndexes(ctx context.Context) error
}

type target struct {
	name string
	s    ensurer
}

func targets(db *mongo.Database) []target {
	return []target{
		{"users", userstore.New(db)},
		{"profiles", profilestore.New(db)},
		{"sessions", sessions.New(db)},
		{"administrators", administratorstore.New(db)},
		{"departements", departementstore.New(db)},
		{"organizers", organizerstore.New(db)},
		{"agendas", agendastore.New(db, agendastore.Agendas)},
		{"events", agendastore.New(db, agendastore.Events)},
		{"projects", projectstore.New(db)},
		{"posts", poststore.New(db)},
		{"news", newsstore.New(db)},
		{"photos", photostore.New(db)},
		{"questions", questionstore.New(db)},
		{"site_config", siteconfigstore.New(db)},
		{"audit_events", audit.New(db)},
	}
}

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
An index that already exists under another name or with other options is
logged and left alone; an operator has to reconcile it by hand.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	for _, t := range targets(db) {
		start := time.Now()
		err := t.s.EnsureIndexes(ctx)
		switch {
		case err == nil:
			logger.Info("indexes ensured",
				zap.String("collection", t.name),
				zap.Duration("took", time.Since(start)))
		case isOptionsConflictErr(err):
			logger.Warn("existing index differs from desired definition; leaving it",
				zap.String("collection", t.name),
				zap.Error(err))
		case isDuplicateKeyErr(err):
			problems = append(problems, t.name+": cannot create unique index (duplicates present): "+err.Error())
		default:
			problems = append(problems, t.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

// Mongo/DocDB return IndexOptionsConflict (85) or IndexKeySpecsConflict (86)
// when an index with the same keys or name already exists differently.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "IndexOptionsConflict") || strings.Contains(s, "IndexKeySpecsConflict")
}
