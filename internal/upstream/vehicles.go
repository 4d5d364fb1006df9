package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListVehicles(ctx context.Context, token string) ([]Vehicle, error) {
	var out []Vehicle
	if err := c.do(ctx, http.MethodGet, pathVehicles, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateVehicle(ctx context.Context, token string, req VehicleRequest) error {
	return c.do(ctx, http.MethodPost, pathVehicles, token, nil, req, nil)
}

func (c *Client) DeleteVehicle(ctx context.Context, token, economical string) error {
	return c.do(ctx, http.MethodDelete, pathVehicles+"/"+url.PathEscape(economical), token, nil, nil, nil)
}

// SearchVehicles powers the autosuggest box; query matches economic number or
// badge.
func (c *Client) SearchVehicles(ctx context.Context, token, query string, page, size int) ([]Vehicle, error) {
	params := url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
		"size":  {strconv.Itoa(size)},
	}
	var out []Vehicle
	if err := c.do(ctx, http.MethodGet, pathVehicleSearch, token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VehicleFilters returns the filter catalog the registered-vehicles table
// offers (distinct brands, work centers and so on).
func (c *Client) VehicleFilters(ctx context.Context, token string) (map[string][]string, error) {
	var out map[string][]string
	if err := c.do(ctx, http.MethodGet, pathVehicleFilters, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WorkshopVehicles(ctx context.Context, token string) ([]StatusVehicle, error) {
	var out []StatusVehicle
	if err := c.do(ctx, http.MethodGet, pathWorkshopList, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) YardVehicles(ctx context.Context, token string) ([]StatusVehicle, error) {
	var out []StatusVehicle
	if err := c.do(ctx, http.MethodGet, pathYardList, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportVehicles downloads the tabular export blob.
func (c *Client) ExportVehicles(ctx context.Context, token string) ([]byte, string, error) {
	return c.doBlob(ctx, pathVehicleExport, token, nil)
}
