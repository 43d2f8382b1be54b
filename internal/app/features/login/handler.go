// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username: The human-readable string users type to sign in
//   - NIM: The student number that keys a profile

import (
	"context"
	"errors"
	"math"
	"net/http"
	"regexp"
	"strconv"

	uierrors "github.com/dalemusser/himatika/internal/app/features/errors"
	"github.com/dalemusser/himatika/internal/app/features/shared"
	profilestore "github.com/dalemusser/himatika/internal/app/store/profiles"
	userstore "github.com/dalemusser/himatika/internal/app/store/users"
	"github.com/dalemusser/himatika/internal/app/system/auditlog"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/ratelimit"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/himatika/internal/domain/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Sessions *auth.SessionService
	Users    *userstore.Store
	Profiles *profilestore.Store
	Limiter  *ratelimit.SigninLimiter
	AuditLog *auditlog.Logger
}

func NewHandler(
	db *mongo.Database,
	sessions *auth.SessionService,
	limiter *ratelimit.SigninLimiter,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Sessions: sessions,
		Users:    userstore.New(db),
		Profiles: profilestore.New(db),
		Limiter:  limiter,
		AuditLog: audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request bodies                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r signinRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type registerRequest struct {
	NIM      int64  `json:"nim"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NIM, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), validation.Match(usernamePattern)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Handlers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSignin handles POST /signin.
//
// Unknown usernames and wrong passwords both answer 401 and never write a
// session. A user whose profile is not active is removed and answered 406.
func (h *Handler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}

	if h.Limiter != nil {
		if ok, wait := h.Limiter.Check(r, req.Username); !ok {
			h.AuditLog.SigninFailedRateLimit(r.Context(), r, req.Username)
			httpx.RateLimited(w, int(math.Ceil(wait.Seconds())))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, req.Username)
	if errors.Is(err, userstore.ErrNotFound) {
		h.AuditLog.SigninFailedUserNotFound(ctx, r, req.Username)
		httpx.Unauthenticated(w, userstore.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "signin: load user", err)
		return
	}
	if !userstore.CheckPassword(user.PasswordHash, req.Password) {
		h.AuditLog.SigninFailedWrongPassword(ctx, r, user.ID, user.Username)
		httpx.Unauthenticated(w, userstore.ErrInvalidCredentials.Error())
		return
	}

	profile, err := h.Profiles.GetByID(ctx, user.ProfileID)
	if err != nil && !errors.Is(err, profilestore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "signin: load profile", err)
		return
	}
	if profile == nil || profile.Status != models.ProfileActive {
		status := "missing"
		if profile != nil {
			status = profile.Status
		}
		if _, err := h.Users.Delete(ctx, user.ID); err != nil {
			h.ErrLog.LogServerError(w, r, "signin: delete user of inactive profile", err)
			return
		}
		h.AuditLog.SigninFailedProfileInactive(ctx, r, user.ID, user.Username, status)
		httpx.NotAcceptable(w, "profile is not active")
		return
	}

	pair, err := h.Sessions.CreateOrReplace(ctx, user.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "signin: create session", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetUsername(req.Username)
	}
	h.AuditLog.SigninSuccess(ctx, r, user.ID, user.Username)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleRefresh handles POST /refresh. The refresh token is returned
// unchanged next to a new access token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pair, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if errors.Is(err, auth.ErrUnauthenticated) {
		h.AuditLog.RefreshFailed(ctx, r)
		httpx.Unauthenticated(w, "invalid refresh token")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "refresh: rotate access token", err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}

// HandleRegister handles POST /register. The profile keyed by the NIM
// must be free; it becomes active and gets the new user.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !shared.DecodeValid(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	profile, err := h.Profiles.GetByNIM(ctx, req.NIM)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.NotFound(w, "no profile with this NIM")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "register: load profile", err)
		return
	}
	if profile.Status != models.ProfileFree {
		httpx.Conflict(w, profilestore.ErrNotFree.Error())
		return
	}

	user, err := h.Users.Create(ctx, req.Username, req.Password, profile.ID)
	switch {
	case errors.Is(err, userstore.ErrDuplicateUsername), errors.Is(err, userstore.ErrDuplicateProfile):
		httpx.Conflict(w, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "register: create user", err)
		return
	}

	if err := h.Profiles.Claim(ctx, profile.ID); err != nil {
		// Lost a race with another registration; undo our user.
		if _, derr := h.Users.Delete(ctx, user.ID); derr != nil {
			h.Log.Error("register: remove orphan user", zap.Error(derr), zap.String("user_id", user.ID.Hex()))
		}
		if errors.Is(err, profilestore.ErrNotFree) {
			httpx.Conflict(w, err.Error())
			return
		}
		h.ErrLog.LogServerError(w, r, "register: claim profile", err)
		return
	}

	h.AuditLog.Registered(ctx, r, user.ID, user.Username, strconv.FormatInt(req.NIM, 10))
	httpx.Created(w, user)
}

// ServeSession handles GET /session and returns the signed-in user with
// current role facts.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.Unauthenticated(w, "")
		return
	}
	httpx.NoCache(w)
	httpx.OK(w, u)
}
