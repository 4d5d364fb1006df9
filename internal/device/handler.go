package device

import (
	"context"
	"errors"
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

const listRefresh = 30 * time.Second

// statusActive is the status a freshly registered device starts in.
const statusActive = "ACTIVO"

type DeviceHandler interface {
	Routes() chi.Router
}

type deviceHandler struct {
	logger    *zap.Logger
	fleet     *upstream.Client
	sessions  session.Service
	guard     *authz.Guard
	validator *validator.Validate
	ticker    *elapsed.Ticker
	searcher  *search.Debouncer[[]upstream.Device]
	refresh   time.Duration
}

func NewDeviceHandler(
	fleet *upstream.Client,
	sessions session.Service,
	guard *authz.Guard,
	ticker *elapsed.Ticker,
	searcher *search.Debouncer[[]upstream.Device],
	l *zap.Logger,
) DeviceHandler {
	return &deviceHandler{
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

func (h *deviceHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.guard.RequireSession)

	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/export", h.Export)
	r.Get("/damaged", h.Damaged)
	r.Get("/damaged/live", h.DamagedLive)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAnyRole("ADMIN"))
		r.Post("/", h.Create)
		r.Delete("/{serialNumber}", h.Delete)
	})

	return r
}

func (h *deviceHandler) token(r *http.Request) string {
	return h.sessions.ReadSession(r.Context()).Token
}

func (h *deviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.fleet.ListDevices(r.Context(), h.token(r))
	if err != nil {
		h.logger.Warn("failed to list devices", zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, devices)
}

func (h *deviceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}

	req.SerialNumber = strings.ToUpper(strings.TrimSpace(req.SerialNumber))

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("device creation validation failed", zap.Error(err))
		httpx.WriteValidation(w, err)
		return
	}

	err := h.fleet.CreateDevice(r.Context(), h.token(r), upstream.DeviceRequest{
		SerialNumber: req.SerialNumber,
		DeviceType:   req.DeviceType,
		WorkCenterID: req.WorkCenterID,
		Status:       statusActive,
	})
	if err != nil {
		h.logger.Warn("device creation rejected", zap.String("serial", req.SerialNumber), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, struct {
		SerialNumber string `json:"serialNumber"`
	}{SerialNumber: req.SerialNumber})
}

func (h *deviceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serialNumber")
	if err := h.fleet.DeleteDevice(r.Context(), h.token(r), serial); err != nil {
		h.logger.Warn("device deletion rejected", zap.String("serial", serial), zap.Error(err))
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleteResponse{SerialNumber: serial, Deleted: true})
}

// Search serves the serial-number autosuggest box, debounced with
// last-request-wins semantics per session.
func (h *deviceHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		httpx.WriteJSON(w, http.StatusOK, suggestionsResponse{Devices: []upstream.Device{}})
		return
	}

	token := h.token(r)
	devices, err := h.searcher.Do(r.Context(), "device:"+token, func(ctx context.Context) ([]upstream.Device, error) {
		return h.fleet.SearchDevices(ctx, token, query, 0, 10)
	})
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) || errors.Is(err, context.Canceled) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, suggestionsResponse{Devices: devices})
}

func (h *deviceHandler) Export(w http.ResponseWriter, r *http.Request) {
	blob, contentType, err := h.fleet.ExportDevices(r.Context(), h.token(r))
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteExport(w, upstream.ExportFilename("devices", time.Now()), contentType, blob)
}

func (h *deviceHandler) Damaged(w http.ResponseWriter, r *http.Request) {
	devices, err := h.fleet.DamagedDevices(r.Context(), h.token(r))
	if err != nil {
		httpx.WriteUpstreamError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, damagedView{Devices: damagedRows(devices, time.Now())})
}

// DamagedLive streams the damaged-devices view over SSE: a row snapshot on
// connect and after each periodic re-fetch, and a timer map every second
// between. The re-fetch runs on its own cadence in a separate goroutine so a
// slow fleet call never holds up a tick; the tick loop only reads the latest
// list.
func (h *deviceHandler) DamagedLive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	token := h.token(r)

	devices, err := h.fleet.DamagedDevices(ctx, token)
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

	if err := httpx.WriteSSE(w, flusher, "snapshot", damagedView{Devices: damagedRows(devices, time.Now())}); err != nil {
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
				fresh, err := h.fleet.DamagedDevices(ctx, token)
				if err != nil {
					h.logger.Warn("damaged view refresh failed", zap.Error(err))
					continue
				}
				mu.Lock()
				devices = fresh
				pending = true
				mu.Unlock()
			}
		}
	}()

	err = h.ticker.Run(ctx, func(now time.Time) error {
		mu.Lock()
		current := devices
		snapshot := pending
		pending = false
		mu.Unlock()
		if snapshot {
			return httpx.WriteSSE(w, flusher, "snapshot", damagedView{Devices: damagedRows(current, now)})
		}
		return httpx.WriteSSE(w, flusher, "tick", elapsed.Tick(current, now))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("damaged view stream ended", zap.Error(err))
	}
}

func damagedRows(devices []upstream.Device, now time.Time) []damagedRow {
	rows := make([]damagedRow, 0, len(devices))
	for _, d := range devices {
		secs := elapsed.Seconds(elapsed.ResolveStart(d.Start(), now), now)
		rows = append(rows, damagedRow{
			SerialNumber:   d.SerialNumber,
			DeviceType:     displayDeviceType(d.DeviceType),
			WorkCenter:     d.WorkCenter.Name,
			Fail:           d.FailText(),
			Elapsed:        elapsed.Format(secs),
			ElapsedSeconds: secs,
		})
	}
	return rows
}
