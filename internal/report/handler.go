package report

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gerefleet/console/internal/authz"
	"github.com/gerefleet/console/internal/elapsed"
	"github.com/gerefleet/console/internal/httpx"
	"github.com/gerefleet/console/internal/search"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"go.uber.org/zap"
)

type ReportHandler interface {
	Routes() chi.Router
}

type reportHandler struct {
	logger    *zap.Logger
	fleet     *upstream.Client
	sessions  session.Service
	guard     *authz.Guard
	validator *validator.Validate
	ticker    *elapsed.Ticker
	searcher  *search.Debouncer[[]string]
}

func NewReportHandler(
	fleet *upstream.Client,
	sessions session.Service,
	guard *authz.Guard,
	ticker *elapsed.Ticker,
	searcher *search.Debouncer[[]string],
	l *zap.Logger,
) ReportHandler {
	return &reportHandler{
		logger:    l,
		fleet:     fleet,
		sessions:  sessions,
		guard:     guard,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		ticker:    ticker,
		searcher:  searcher,
	}
}

func (h *reportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.guard.RequireSession)

	r.Post("/vehicles", h.CreateVehicleReport)
	r.Post("/devices", h.CreateDeviceReport)
	r.Get("/history", h.History)
	r.Get("/history/live", h.HistoryLive)
	r.Get("/history/suggestions", h.HistorySuggestions)

	return r
}

func (h *reportHandler) token(r *http.Request) string {
	return h.sessions.ReadSession(r.Context()).Token
}

func (h *reportHandler) CreateVehicleReport(w http.ResponseWriter, r *http.Request) {
	var req vehicleReportRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.WriteValidation(w, err)
		return
	}
	if !hasReason(req.FailTypeID, req.OtherReason) {
		writeMissingReason(w)
		return
	}

	err := h.fleet.CreateVehicleReport(r.Context(), h.token(r), upstream.ReportRequest{
		Economical:  req.Economical,
		Status:      req.Status,
		FailTypeID:  req.FailTypeID,
		OtherReason: strings.TrimSpace(req.OtherReason),
		Mileage:     req.Mileage,
	})
	if err != nil {
		h.logger.Warn("vehicle report rejected", zap.String("economical", req.Economical), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, reportAccepted{Reported: true})
}

func (h *reportHandler) CreateDeviceReport(w http.ResponseWriter, r *http.Request) {
	var req deviceReportRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.SerialNumber = strings.ToUpper(strings.TrimSpace(req.SerialNumber))
	if err := h.validator.Struct(req); err != nil {
		httpx.WriteValidation(w, err)
		return
	}
	if !hasReason(req.FailTypeID, req.OtherReason) {
		writeMissingReason(w)
		return
	}

	err := h.fleet.CreateDeviceReport(r.Context(), h.token(r), upstream.ReportRequest{
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
		FailTypeID:   req.FailTypeID,
		OtherReason:  strings.TrimSpace(req.OtherReason),
	})
	if err != nil {
		h.logger.Warn("device report rejected", zap.String("serial", req.SerialNumber), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, reportAccepted{Reported: true})
}

func (h *reportHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.fleet.History(r.Context(), h.token(r), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, historyView{Entries: historyRows(entries, time.Now())})
}

// HistoryLive streams the history view with its per-entry timers on the
// shared 1-second cadence until the client disconnects.
func (h *reportHandler) HistoryLive(w http.ResponseWriter, r *http.Request) {
	token := h.token(r)
	searchTerm := strings.TrimSpace(r.URL.Query().Get("search"))

	entries, err := h.fleet.History(r.Context(), token, searchTerm)
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}

	flusher, err := httpx.SSEWriter(w)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "streaming unsupported",
		})
		return
	}

	if err := httpx.WriteSSE(w, flusher, "snapshot", historyView{Entries: historyRows(entries, time.Now())}); err != nil {
		return
	}

	err = h.ticker.Run(r.Context(), func(now time.Time) error {
		return httpx.WriteSSE(w, flusher, "tick", elapsed.Tick(entries, now))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("history stream ended", zap.Error(err))
	}
}

// HistorySuggestions serves the economic-number autosuggest box, debounced
// with last-request-wins semantics.
func (h *reportHandler) HistorySuggestions(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		httpx.WriteJSON(w, http.StatusOK, suggestionsResponse{Suggestions: []string{}})
		return
	}

	token := h.token(r)
	suggestions, err := h.searcher.Do(r.Context(), "history:"+token, func(ctx context.Context) ([]string, error) {
		return h.fleet.HistorySuggestions(ctx, token, query)
	})
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) || errors.Is(err, context.Canceled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, suggestionsResponse{Suggestions: suggestions})
}

// hasReason enforces the report form's rule: a catalog failure or the
// free-text "other" reason, at least one.
func hasReason(failTypeID int64, otherReason string) bool {
	return failTypeID > 0 || strings.TrimSpace(otherReason) != ""
}

func writeMissingReason(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
		Code:    httpx.ErrValidationFailed,
		Message: "validation failed",
		Details: []httpx.FieldError{{Field: "FailTypeID", Rule: "required_without", Param: "OtherReason"}},
	})
}

func historyRows(entries []upstream.HistoryEntry, now time.Time) []historyRow {
	rows := make([]historyRow, 0, len(entries))
	for _, e := range entries {
		secs := elapsed.Seconds(elapsed.ResolveStart(e.Start(), now), now)
		rows = append(rows, historyRow{
			ID:             e.ID,
			Economical:     e.Economical,
			SerialNumber:   e.Serial,
			Status:         e.Status,
			FailType:       e.FailType,
			WorkCenter:     e.WorkCenter.Name,
			Elapsed:        elapsed.Format(secs),
			ElapsedSeconds: secs,
		})
	}
	return rows
}
