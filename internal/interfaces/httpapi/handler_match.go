package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/matchlist/internal/domain/matchlist"
	"github.com/riskibarqy/matchlist/internal/usecase"
)

type scheduleMatchRequest struct {
	TeamAID     int64  `json:"team_a_id" validate:"required,gt=0"`
	TeamBID     int64  `json:"team_b_id" validate:"required,gt=0,nefield=TeamAID"`
	StartTime   string `json:"start_time" validate:"required"`
	ScheduledBy int64  `json:"scheduled_by" validate:"required,gt=0"`
}

type rescheduleMatchRequest struct {
	StartTime   string `json:"start_time" validate:"required"`
	ScheduledBy int64  `json:"scheduled_by" validate:"required,gt=0"`
}

type scheduledMatchDTO struct {
	TeamAID     int64  `json:"team_a_id"`
	TeamBID     int64  `json:"team_b_id"`
	StartTime   int64  `json:"start_time"`
	StartsAt    string `json:"starts_at"`
	ScheduledAt string `json:"scheduled_at"`
	ScheduledBy int64  `json:"scheduled_by"`
}

type matchListDTO struct {
	Items     []scheduledMatchDTO `json:"items"`
	Count     int                 `json:"count"`
	Offset    int                 `json:"offset"`
	NotBefore string              `json:"not_before,omitempty"`
}

func (h *Handler) ListUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUpcomingMatches")
	defer span.End()

	query := r.URL.Query()
	notBefore, err := parseOptionalTime(query.Get("not_before"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parseOptionalInt(query.Get("limit"), "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"), "offset")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchService.ListUpcoming(ctx, notBefore, matchlist.Page{Limit: limit, Offset: offset})
	if err != nil {
		h.logger.WarnContext(ctx, "list upcoming matches failed", "limit", limit, "offset", offset, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := matchListDTO{
		Items:  make([]scheduledMatchDTO, 0, len(items)),
		Count:  len(items),
		Offset: offset,
	}
	if !notBefore.IsZero() {
		out.NotBefore = notBefore.UTC().Format(time.RFC3339)
	}
	for _, item := range items {
		out.Items = append(out.Items, scheduledMatchToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	teamA, teamB, err := teamPairFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Get(ctx, teamA, teamB)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "team_a_id", teamA, "team_b_id", teamB, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduledMatchToDTO(item))
}

func (h *Handler) ScheduleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScheduleMatch")
	defer span.End()

	var req scheduleMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startTime, err := parseStartTime(req.StartTime)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Schedule(ctx, usecase.ScheduleInput{
		TeamA:     req.TeamAID,
		TeamB:     req.TeamBID,
		StartTime: startTime,
		Actor:     req.ScheduledBy,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "schedule match failed", "team_a_id", req.TeamAID, "team_b_id", req.TeamBID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, scheduledMatchToDTO(item))
}

func (h *Handler) RescheduleMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RescheduleMatch")
	defer span.End()

	teamA, teamB, err := teamPairFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req rescheduleMatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	startTime, err := parseStartTime(req.StartTime)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Reschedule(ctx, usecase.RescheduleInput{
		TeamA:     teamA,
		TeamB:     teamB,
		StartTime: startTime,
		Actor:     req.ScheduledBy,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reschedule match failed", "team_a_id", teamA, "team_b_id", teamB, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduledMatchToDTO(item))
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelMatch")
	defer span.End()

	teamA, teamB, err := teamPairFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.matchService.Cancel(ctx, teamA, teamB)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel match failed", "team_a_id", teamA, "team_b_id", teamB, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduledMatchToDTO(item))
}

func scheduledMatchToDTO(v matchlist.ScheduledMatch) scheduledMatchDTO {
	return scheduledMatchDTO{
		TeamAID:     v.TeamAID,
		TeamBID:     v.TeamBID,
		StartTime:   v.StartTime,
		StartsAt:    v.StartsAt().Format(time.RFC3339),
		ScheduledAt: time.Unix(v.ScheduledAt, 0).UTC().Format(time.RFC3339),
		ScheduledBy: v.ScheduledBy,
	}
}

func teamPairFromPath(r *http.Request) (int64, int64, error) {
	teamA, err := parseTeamID(r.PathValue("teamA"))
	if err != nil {
		return 0, 0, err
	}
	teamB, err := parseTeamID(r.PathValue("teamB"))
	if err != nil {
		return 0, 0, err
	}
	return teamA, teamB, nil
}

func parseTeamID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid team id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

func parseStartTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_time must be RFC3339: %v", usecase.ErrInvalidInput, err)
	}
	return t, nil
}

// parseOptionalTime accepts RFC3339 or unix seconds. Empty means zero.
func parseOptionalTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if secs <= 0 {
			return time.Time{}, fmt.Errorf("%w: not_before must be > 0", usecase.ErrInvalidInput)
		}
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: not_before must be RFC3339 or unix seconds", usecase.ErrInvalidInput)
	}
	return t, nil
}

func parseOptionalInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}
