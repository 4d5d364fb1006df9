// Package upstream is the typed client for the external fleet REST API, the
// sole authority on fleet data. Nothing fetched through it is cached.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Canonical endpoint paths. Two source revisions of the old client disagreed
// on some of these (device/search vs devices/search, download vs export);
// these constants follow the newest revision and are the single place to
// correct against the live backend.
const (
	pathLogin = "/auth/login"

	pathVehicles        = "/api/vehicles"
	pathVehicleFilters  = "/api/vehicles/filters"
	pathVehicleSearch   = "/api/vehicles/search"
	pathVehicleExport   = "/api/vehicles/export"
	pathWorkshopList    = "/api/workshop/vehicles"
	pathYardList        = "/api/yard/vehicles"

	pathDevices       = "/api/device"
	pathDeviceSearch  = "/api/device/search"
	pathDeviceExport  = "/api/device/export"
	pathDamagedList   = "/api/devices/damaged"

	pathReports            = "/api/reports"
	pathDeviceReports      = "/api/deviceReport"
	pathHistory            = "/api/reports/history"
	pathHistorySuggestions = "/api/reports/history/suggestions"

	pathWorkCenters     = "/api/workCenter"
	pathProcesses       = "/api/process"
	pathFailTypes       = "/api/failTypes"
	pathDeviceFailTypes = "/api/failTypeDevice"
	pathRoles           = "/api/roles"

	pathUsers      = "/api/user"
	pathUserSearch = "/api/user/search"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, token, query, body, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapStatus(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// doBlob fetches a binary payload (spreadsheet exports).
func (c *Client) doBlob(ctx context.Context, path, token string, query url.Values) ([]byte, string, error) {
	resp, err := c.send(ctx, http.MethodGet, path, token, query, nil, "*/*")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", c.mapStatus(resp)
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read export: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func (c *Client) send(ctx context.Context, method, path, token string, query url.Values, body any, accept string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// cancelled or superseded, not a reachability problem
			return nil, ctx.Err()
		}
		c.logger.Warn("fleet api transport failure",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return resp, nil
}

type upstreamErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

func (c *Client) mapStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var body upstreamErrorBody
	_ = json.Unmarshal(raw, &body)
	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, message)
		}
		return ErrUnauthorized
	case http.StatusNotFound:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		return ErrNotFound
	case http.StatusConflict:
		return &ConflictError{Field: body.Field, Message: message}
	default:
		return &StatusError{StatusCode: resp.StatusCode, Message: message}
	}
}

// IsAuthFailure reports whether err should end the caller's session.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// ExportFilename builds the client-side download name for an export blob,
// e.g. "vehicles_2026-08-27.xlsx".
func ExportFilename(entity string, date time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", entity, date.Format("2006-01-02"))
}
