package upstream

import (
	"context"
	"net/http"
)

func (c *Client) WorkCenters(ctx context.Context, token string) ([]WorkCenter, error) {
	var out []WorkCenter
	if err := c.do(ctx, http.MethodGet, pathWorkCenters, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Processes(ctx context.Context, token string) ([]Process, error) {
	var out []Process
	if err := c.do(ctx, http.MethodGet, pathProcesses, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FailTypes is the vehicle failure catalog.
func (c *Client) FailTypes(ctx context.Context, token string) ([]FailType, error) {
	var out []FailType
	if err := c.do(ctx, http.MethodGet, pathFailTypes, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeviceFailTypes is the device failure catalog, kept separate upstream.
func (c *Client) DeviceFailTypes(ctx context.Context, token string) ([]FailType, error) {
	var out []FailType
	if err := c.do(ctx, http.MethodGet, pathDeviceFailTypes, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Roles(ctx context.Context, token string) ([]Role, error) {
	var out []Role
	if err := c.do(ctx, http.MethodGet, pathRoles, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
