package models

// Pair of tokens the client keeps between runs
// Either of them may be empty
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (p TokenPair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Complete reports whether both tokens are set
func (p TokenPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// AuthResponse is the login or register reply
// Tokens may come flat or nested under "tokens"
type AuthResponse struct {
	User    *User      `json:"user,omitempty"`
	Access  string     `json:"access,omitempty"`
	Refresh string     `json:"refresh,omitempty"`
	Tokens  *TokenPair `json:"tokens,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Pair normalizes both shapes of response to single TokenPair
func (r AuthResponse) Pair() TokenPair {
	if r.Tokens != nil && r.Tokens.Complete() {
		return *r.Tokens
	}
	return TokenPair{Access: r.Access, Refresh: r.Refresh}
}

// Reply of token refresh endpoint
type RefreshResponse struct {
	Access string `json:"access"`
}
