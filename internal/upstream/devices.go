package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListDevices(ctx context.Context, token string) ([]Device, error) {
	var out []Device
	if err := c.do(ctx, http.MethodGet, pathDevices, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDevice(ctx context.Context, token string, req DeviceRequest) error {
	return c.do(ctx, http.MethodPost, pathDevices, token, nil, req, nil)
}

func (c *Client) DeleteDevice(ctx context.Context, token, serialNumber string) error {
	return c.do(ctx, http.MethodDelete, pathDevices+"/"+url.PathEscape(serialNumber), token, nil, nil, nil)
}

// SearchDevices powers the serial-number autosuggest box.
func (c *Client) SearchDevices(ctx context.Context, token, query string, page, size int) ([]Device, error) {
	params := url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
		"size":  {strconv.Itoa(size)},
	}
	var out []Device
	if err := c.do(ctx, http.MethodGet, pathDeviceSearch, token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DamagedDevices lists devices currently reported as failing, with whatever
// report-instant fields the backend revision provides.
func (c *Client) DamagedDevices(ctx context.Context, token string) ([]Device, error) {
	var out []Device
	if err := c.do(ctx, http.MethodGet, pathDamagedList, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportDevices downloads the tabular export blob.
func (c *Client) ExportDevices(ctx context.Context, token string) ([]byte, string, error) {
	return c.doBlob(ctx, pathDeviceExport, token, nil)
}
