package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchlist/internal/usecase"
)

type purgeExpiredResultDTO struct {
	RunID        string              `json:"run_id"`
	Cutoff       string              `json:"cutoff"`
	RemovedCount int                 `json:"removed_count"`
	Removed      []scheduledMatchDTO `json:"removed"`
}

func (h *Handler) RunPurgeExpiredJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPurgeExpiredJob")
	defer span.End()

	if h.sweeper == nil {
		writeError(ctx, w, fmt.Errorf("%w: expiry sweeper is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.sweeper.RunOnce(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run purge expired job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := purgeExpiredResultDTO{
		RunID:        result.RunID,
		Cutoff:       result.Cutoff.UTC().Format(time.RFC3339),
		RemovedCount: len(result.Removed),
		Removed:      make([]scheduledMatchDTO, 0, len(result.Removed)),
	}
	for _, item := range result.Removed {
		out.Removed = append(out.Removed, scheduledMatchToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}
