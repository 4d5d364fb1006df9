package vehicle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
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

// listRefresh matches the old console's 30-second auto-refresh of live views.
const listRefresh = 30 * time.Second

type VehicleHandler interface {
	Routes() chi.Router
}

type vehicleHandler struct {
	logger    *zap.Logger
	fleet     *upstream.Client
	sessions  session.Service
	guard     *authz.Guard
	validator *validator.Validate
	ticker    *elapsed.Ticker
	searcher  *search.Debouncer[[]upstream.Vehicle]
	refresh   time.Duration
}

func NewVehicleHandler(
	fleet *upstream.Client,
	sessions session.Service,
	guard *authz.Guard,
	ticker *elapsed.Ticker,
	searcher *search.Debouncer[[]upstream.Vehicle],
	l *zap.Logger,
) VehicleHandler {
	return &vehicleHandler{
		logger:    l,
		fleet:     fleet,
		sessions:  sessions,
		guard:     guard,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		ticker:    ticker,
		searcher:  searcher,
		refresh:   listRefresh,
	}
}

// Routes mirrors the old console's route table: registration, workshop, yard
// and history views need a session; create and delete need ADMIN.
func (h *vehicleHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.guard.RequireSession)

	r.Get("/", h.List)
	r.Get("/filters", h.Filters)
	r.Get("/search", h.Search)
	r.Get("/export", h.Export)
	r.Get("/workshop", h.Workshop)
	r.Get("/workshop/live", h.WorkshopLive)
	r.Get("/yard", h.Yard)
	r.Get("/yard/live", h.YardLive)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAnyRole("ADMIN"))
		r.Post("/", h.Create)
		r.Delete("/{economical}", h.Delete)
	})

	return r
}

func (h *vehicleHandler) token(r *http.Request) string {
	return h.sessions.ReadSession(r.Context()).Token
}

func (h *vehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleet.ListVehicles(r.Context(), h.token(r))
	if err != nil {
		h.logger.Warn("failed to list vehicles", zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, vehicles)
}

func (h *vehicleHandler) Filters(w http.ResponseWriter, r *http.Request) {
	filters, err := h.fleet.VehicleFilters(r.Context(), h.token(r))
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, filters)
}

func (h *vehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	req.Badge = strings.ToUpper(strings.TrimSpace(req.Badge))
	req.Brand = strings.ToUpper(strings.TrimSpace(req.Brand))
	req.Model = strings.ToUpper(strings.TrimSpace(req.Model))

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("vehicle creation validation failed", zap.Error(err))
		httpx.WriteValidation(w, err)
		return
	}
	// model-year upper bound is next year's models, so it can't be a static tag
	if maxYear := time.Now().Year() + 1; req.Year > maxYear {
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[[]httpx.FieldError]{
			Code:    httpx.ErrValidationFailed,
			Message: "validation failed",
			Details: []httpx.FieldError{{Field: "Year", Rule: "lte", Param: fmt.Sprint(maxYear)}},
		})
		return
	}

	err := h.fleet.CreateVehicle(r.Context(), h.token(r), upstream.VehicleRequest{
		Economical:   req.Economical,
		Badge:        req.Badge,
		Property:     req.Property,
		Mileage:      req.Mileage,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		WorkCenterID: req.WorkCenterID,
		ProcessID:    req.ProcessID,
	})
	if err != nil {
		h.logger.Warn("vehicle creation rejected", zap.String("economical", req.Economical), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, struct {
		Economical string `json:"economical"`
	}{Economical: req.Economical})
}

func (h *vehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	economical := chi.URLParam(r, "economical")
	if err := h.fleet.DeleteVehicle(r.Context(), h.token(r), economical); err != nil {
		h.logger.Warn("vehicle deletion rejected", zap.String("economical", economical), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleteResponse{Economical: economical, Deleted: true})
}

// Search serves the autosuggest box. Requests are debounced per session key
// and the newest request cancels any older in-flight one, so a slow stale
// answer can never reach the box after a fresher query was typed.
func (h *vehicleHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		httpx.WriteJSON(w, http.StatusOK, suggestionsResponse{Vehicles: []upstream.Vehicle{}})
		return
	}

	token := h.token(r)
	vehicles, err := h.searcher.Do(r.Context(), "vehicle:"+token, func(ctx context.Context) ([]upstream.Vehicle, error) {
		return h.fleet.SearchVehicles(ctx, token, query, 0, 10)
	})
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) || errors.Is(err, context.Canceled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, suggestionsResponse{Vehicles: vehicles})
}

func (h *vehicleHandler) Export(w http.ResponseWriter, r *http.Request) {
	blob, contentType, err := h.fleet.ExportVehicles(r.Context(), h.token(r))
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteExport(w, upstream.ExportFilename("vehicles", time.Now()), contentType, blob)
}

func (h *vehicleHandler) Workshop(w http.ResponseWriter, r *http.Request) {
	h.statusList(w, r, h.fleet.WorkshopVehicles)
}

func (h *vehicleHandler) Yard(w http.ResponseWriter, r *http.Request) {
	h.statusList(w, r, h.fleet.YardVehicles)
}

func (h *vehicleHandler) WorkshopLive(w http.ResponseWriter, r *http.Request) {
	h.statusLive(w, r, h.fleet.WorkshopVehicles)
}

func (h *vehicleHandler) YardLive(w http.ResponseWriter, r *http.Request) {
	h.statusLive(w, r, h.fleet.YardVehicles)
}

type statusFetch func(ctx context.Context, token string) ([]upstream.StatusVehicle, error)

func (h *vehicleHandler) statusList(w http.ResponseWriter, r *http.Request, fetch statusFetch) {
	vehicles, err := fetch(r.Context(), h.token(r))
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusView{Vehicles: statusRows(vehicles, time.Now())})
}

// statusLive streams the view over SSE: a full row snapshot on connect and
// after each periodic re-fetch, and a timer map every tick in between. The
// re-fetch runs on its own cadence in a separate goroutine so a slow fleet
// call never holds up a tick; the tick loop only reads the latest list. The
// stream stops when the client disconnects, taking both loops with it.
func (h *vehicleHandler) statusLive(w http.ResponseWriter, r *http.Request, fetch statusFetch) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	token := h.token(r)

	vehicles, err := fetch(ctx, token)
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

	if err := httpx.WriteSSE(w, flusher, "snapshot", statusView{Vehicles: statusRows(vehicles, time.Now())}); err != nil {
		return
	}

	var mu sync.Mutex
	pending := false

	go func() {
		refresh := time.NewTicker(h.refresh)
		defer refresh.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-refresh.C:
				fresh, err := fetch(ctx, token)
				if err != nil {
					h.logger.Warn("live view refresh failed", zap.Error(err))
					continue
				}
				mu.Lock()
				vehicles = fresh
				pending = true
				mu.Unlock()
			}
		}
	}()

	err = h.ticker.Run(ctx, func(now time.Time) error {
		mu.Lock()
		current := vehicles
		snapshot := pending
		pending = false
		mu.Unlock()
		if snapshot {
			return httpx.WriteSSE(w, flusher, "snapshot", statusView{Vehicles: statusRows(current, now)})
		}
		return httpx.WriteSSE(w, flusher, "tick", elapsed.Tick(current, now))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("live view stream ended", zap.Error(err))
	}
}

func statusRows(vehicles []upstream.StatusVehicle, now time.Time) []statusRow {
	rows := make([]statusRow, 0, len(vehicles))
	for _, v := range vehicles {
		secs := elapsed.Seconds(elapsed.ResolveStart(v.Start(), now), now)
		rows = append(rows, statusRow{
			Economical:     v.Economical,
			Badge:          v.Badge,
			WorkCenter:     v.WorkCenter.Name,
			Fail:           v.FailText(),
			Elapsed:        elapsed.Format(secs),
			ElapsedSeconds: secs,
		})
	}
	return rows
}
