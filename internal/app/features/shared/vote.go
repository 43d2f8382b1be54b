package shared

import (
	"errors"
	"net/http"

	questionstore "github.com/dalemusser/himatika/internal/app/store/questions"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	validation "github.com/go-ozzo/ozzo-validation"
)

// VoteRequest is the body of the question and answer vote endpoints.
type VoteRequest struct {
	VoteType string `json:"voteType"`
}

func (r VoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.VoteType, validation.Required),
	)
}

// WriteVoteError answers the vote errors a client can cause and reports
// whether it wrote a response.
func WriteVoteError(w http.ResponseWriter, err error, notFound string) bool {
	switch {
	case errors.Is(err, questionstore.ErrQuestionNotFound), errors.Is(err, questionstore.ErrAnswerNotFound):
		httpx.NotFound(w, notFound)
	case errors.Is(err, questionstore.ErrVoteType):
		httpx.BadRequest(w, err.Error())
	case errors.Is(err, questionstore.ErrVoteContention):
		httpx.Conflict(w, err.Error())
	default:
		return false
	}
	return true
}
