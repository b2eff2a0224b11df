package models

// Session is the persisted login state of the CLI.
type Session struct {
	Username     string `json:"username"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoggedIn reports whether the session carries any token.
func (s *Session) LoggedIn() bool {
	return s != nil && (s.AccessToken != "" || s.RefreshToken != "")
}
