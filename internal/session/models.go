package session

// Session is derived, never stored: every read reconstructs it from the
// persisted token string, so no authorization decision can outlive the token.
type Session struct {
	Token         string   `json:"-"`
	Authenticated bool     `json:"authenticated"`
	Roles         []string `json:"roles"`
	RPE           string   `json:"rpe,omitempty"`
	Name          string   `json:"name,omitempty"`
}

// Anonymous is the result of every failed or absent read.
var Anonymous = Session{Roles: []string{}}
