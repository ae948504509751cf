package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultCodeTTL           = 10 * time.Minute
	DefaultConsentMemoryDays = 90
	DefaultPendingTTL        = 15 * time.Minute

	defaultLoginPath = "/login"
)

type OAuthConfig struct {
	// LoginPath is where unauthenticated browsers are sent, with the original
	// authorize URL in the returnUrl query parameter.
	LoginPath         string        `yaml:"loginPath" json:"loginPath"`
	CodeTTL           time.Duration `yaml:"codeTTL" json:"codeTTL"`
	ConsentMemoryDays int           `yaml:"consentMemoryDays" json:"consentMemoryDays"`
	PendingTTL        time.Duration `yaml:"pendingTTL" json:"pendingTTL"`
}

func (o *OAuthConfig) applyDefaults() {
	if o.LoginPath == "" {
		o.LoginPath = defaultLoginPath
	}
	if o.CodeTTL == 0 {
		o.CodeTTL = DefaultCodeTTL
	}
	if o.ConsentMemoryDays == 0 {
		o.ConsentMemoryDays = DefaultConsentMemoryDays
	}
	if o.PendingTTL == 0 {
		o.PendingTTL = DefaultPendingTTL
	}
}

func (o *OAuthConfig) validate() error {
	if !strings.HasPrefix(o.LoginPath, "/") {
		return fmt.Errorf("oauth.loginPath must be an absolute path, got '%s'", o.LoginPath)
	}
	if o.CodeTTL < 0 {
		return fmt.Errorf("oauth.codeTTL must be positive")
	}
	if o.ConsentMemoryDays < 0 {
		return fmt.Errorf("oauth.consentMemoryDays must be positive")
	}
	if o.PendingTTL < 0 {
		return fmt.Errorf("oauth.pendingTTL must be positive")
	}
	return nil
}
