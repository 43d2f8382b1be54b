package shared

import (
	"context"

	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobInput names a member by NIM for a job on an agenda, event or project.
type JobInput struct {
	Job string `json:"job"`
	NIM int64  `json:"nim"`
}

func (j JobInput) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Job, validation.Required, validation.Length(1, 100)),
		validation.Field(&j.NIM, validation.Required, validation.Min(int64(1))),
	)
}

// ResolveJobs maps each input's NIM to a profile id. An unknown NIM fails
// with profilestore.ErrNotFound wrapped with the NIM.
func ResolveJobs(ctx context.Context, profiles *profilestore.Store, in []JobInput) ([]string, []primitive.ObjectID, error) {
	nims := make([]int64, len(in))
	for i, j := range in {
		nims[i] = j.NIM
	}
	ids, err := profiles.IDsByNIM(ctx, nims)
	if err != nil {
		return nil, nil, err
	}
	jobs := make([]string, len(in))
	out := make([]primitive.ObjectID, len(in))
	for i, j := range in {
		jobs[i] = j.Job
		out[i] = ids[j.NIM]
	}
	return jobs, out, nil
}

// ProfileIDs collects the profile ids of committees, contributors and
// registrants so their summaries can be loaded in one query.
func ProfileIDs(groups ...[]primitive.ObjectID) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{}
	var out []primitive.ObjectID
	for _, g := range groups {
		for _, id := range g {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Summaries keys profile summaries by hex id for JSON output.
func Summaries(ctx context.Context, profiles *profilestore.Store, ids []primitive.ObjectID) (map[string]models.ProfileSummary, error) {
	m, err := profiles.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.ProfileSummary, len(m))
	for id, s := range m {
		out[id.Hex()] = s
	}
	return out, nil
}
