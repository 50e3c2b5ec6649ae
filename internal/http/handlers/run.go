package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/ainews-backend/internal/domain/jobs"
	"github.com/yungbote/ainews-backend/internal/http/response"
	"github.com/yungbote/ainews-backend/internal/platform/ctxutil"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

// RunSource is the live scheduler view.
type RunSource interface {
	LastRun() *jobs.RunSummary
	NextRuns() map[jobs.Trigger]time.Time
}

// RunHistory is the persisted ledger view.
type RunHistory interface {
	GetLatest(ctx context.Context, tx *gorm.DB) (*jobs.RunRecord, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*jobs.RunRecord, error)
}

type RunHandler struct {
	log     *logger.Logger
	live    RunSource
	history RunHistory
}

// NewRunHandler serves run summaries. Either source may be nil.
func NewRunHandler(log *logger.Logger, live RunSource, history RunHistory) *RunHandler {
	return &RunHandler{log: log.With("handler", "RunHandler"), live: live, history: history}
}

type latestRunResponse struct {
	Run      *jobs.RunSummary           `json:"run"`
	NextRuns map[jobs.Trigger]time.Time `json:"next_runs,omitempty"`
}

// GET /runs/latest
func (h *RunHandler) GetLatest(c *gin.Context) {
	resp := latestRunResponse{}
	if h.live != nil {
		resp.Run = h.live.LastRun()
		resp.NextRuns = h.live.NextRuns()
	}
	if resp.Run == nil && h.history != nil {
		rec, err := h.history.GetLatest(c.Request.Context(), nil)
		if err != nil {
			h.log.Warn("Load latest run failed", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
			response.RespondError(c, http.StatusInternalServerError, "ledger_error", err)
			return
		}
		if rec != nil {
			s, err := rec.Summary()
			if err != nil {
				response.RespondError(c, http.StatusInternalServerError, "ledger_error", err)
				return
			}
			resp.Run = &s
		}
	}
	if resp.Run == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("no runs recorded yet"))
		return
	}
	response.RespondOK(c, resp)
}

// GET /runs?limit=N
func (h *RunHandler) ListRuns(c *gin.Context) {
	if h.history == nil {
		response.RespondError(c, http.StatusNotFound, "ledger_disabled", errors.New("run ledger not configured"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	recs, err := h.history.ListRecent(c.Request.Context(), nil, limit)
	if err != nil {
		h.log.Warn("List runs failed", append(ctxutil.LogFields(c.Request.Context()), "error", err)...)
		response.RespondError(c, http.StatusInternalServerError, "ledger_error", err)
		return
	}
	runs := make([]jobs.RunSummary, 0, len(recs))
	for _, r := range recs {
		s, err := r.Summary()
		if err != nil {
			continue
		}
		runs = append(runs, s)
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
