package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// CreateVehicleReport submits a status-change report for a vehicle.
func (c *Client) CreateVehicleReport(ctx context.Context, token string, req ReportRequest) error {
	return c.do(ctx, http.MethodPost, pathReports, token, nil, req, nil)
}

// CreateDeviceReport submits a status-change report for a device.
func (c *Client) CreateDeviceReport(ctx context.Context, token string, req ReportRequest) error {
	return c.do(ctx, http.MethodPost, pathDeviceReports, token, nil, req, nil)
}

// History returns status-change entries, optionally filtered by economic
// number.
func (c *Client) History(ctx context.Context, token, search string) ([]HistoryEntry, error) {
	var params url.Values
	if search != "" {
		params = url.Values{"search": {search}}
	}
	var out []HistoryEntry
	if err := c.do(ctx, http.MethodGet, pathHistory, token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HistorySuggestions returns economic-number completions for the history
// search box.
func (c *Client) HistorySuggestions(ctx context.Context, token, query string) ([]string, error) {
	var out []string
	params := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, pathHistorySuggestions, token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
