package upstream

import (
	"context"
	"net/http"
)

type loginRequest struct {
	RPE      string `json:"rpe"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and display name.
func (c *Client) Login(ctx context.Context, rpe, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, pathLogin, "", nil, loginRequest{RPE: rpe, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
