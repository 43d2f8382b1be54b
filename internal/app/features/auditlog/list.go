// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/himatika/internal/app/store/audit"
	"github.com/dalemusser/himatika/internal/app/system/auth"
	"github.com/dalemusser/himatika/internal/app/system/httpx"
	"github.com/dalemusser/himatika/internal/app/system/paging"
	"github.com/dalemusser/himatika/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recentLimit caps GET /me.
const recentLimit = 20

const dateLayout = "2006-01-02"

var errBadTime = errors.New("expected YYYY-MM-DD or RFC 3339")

// ServeList handles GET /audit. Query parameters:
// category, eventType, userId, start, end, page, perPage.
// Dates are inclusive; a bare end date covers the whole day.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r, paging.Spec{})

	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "eventType")),
		Limit:     int64(p.PerPage),
		Offset:    p.Skip(),
	}
	if filter.Category != "" && filter.Category != audit.CategoryAuth && filter.Category != audit.CategoryAdmin {
		httpx.BadRequest(w, "category must be auth or admin")
		return
	}
	if raw := strings.TrimSpace(query.Get(r, "userId")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpx.BadRequest(w, "userId is not a valid id")
			return
		}
		filter.UserID = &id
	}

	start, err := parseTime(query.Get(r, "start"), false)
	if err != nil {
		httpx.BadRequest(w, "start: "+err.Error())
		return
	}
	end, err := parseTime(query.Get(r, "end"), true)
	if err != nil {
		httpx.BadRequest(w, "end: "+err.Error())
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		httpx.BadRequest(w, "end must not be before start")
		return
	}
	filter.StartTime, filter.EndTime = start, end

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit list: count", err)
		return
	}
	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit list: query", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httpx.List(w, events, paging.NewMeta(p, total))
}

// ServeMine handles GET /audit/me: the caller's own recent auth events.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Store.GetByUser(ctx, u.ID, recentLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "audit me: query", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httpx.OK(w, events)
}

func parseTime(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errBadTime
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
