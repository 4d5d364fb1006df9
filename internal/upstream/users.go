package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) CreateUser(ctx context.Context, token string, req UserRequest) error {
	return c.do(ctx, http.MethodPost, pathUsers, token, nil, req, nil)
}

func (c *Client) DeleteUser(ctx context.Context, token, rpe string) error {
	return c.do(ctx, http.MethodDelete, pathUsers+"/"+url.PathEscape(rpe), token, nil, nil, nil)
}

// SearchUsers powers the RPE autosuggest box.
func (c *Client) SearchUsers(ctx context.Context, token, query string, page, size int) ([]User, error) {
	params := url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
		"size":  {strconv.Itoa(size)},
	}
	var out []User
	if err := c.do(ctx, http.MethodGet, pathUserSearch, token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
