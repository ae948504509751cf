package config

const (
	defaultTokenCookieName   = "session_token"
	defaultSessionCookieName = "oauth_session"
)

type SessionConfig struct {
	// TokenCookieName is the HTTP-only cookie carrying the login session token.
	TokenCookieName string `yaml:"tokenCookieName" json:"tokenCookieName"`
	// CookieName is the cookie carrying the id of the server-side OAuth session
	// that holds in-flight authorization requests.
	CookieName      string `yaml:"cookieName" json:"cookieName"`
	JWKSFile        string `yaml:"jwksFile" json:"jwksFile"`
	Issuer          string `yaml:"issuer" json:"issuer"`
	Audience        string `yaml:"audience" json:"audience"`
	InsecureCookies bool   `yaml:"insecureCookies" json:"insecureCookies"`
}

func (s *SessionConfig) applyDefaults() {
	if s.TokenCookieName == "" {
		s.TokenCookieName = defaultTokenCookieName
	}
	if s.CookieName == "" {
		s.CookieName = defaultSessionCookieName
	}
}
