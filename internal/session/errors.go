package session

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
