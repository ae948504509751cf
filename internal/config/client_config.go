package config

import (
	"fmt"

	"github.com/intrafind/ihub-apps-sub004/internal/constants"
)

const (
	ClientTypePublic       = "public"
	ClientTypeConfidential = "confidential"
)

// ClientConfig declares an OAuth client in the configuration file. Active and
// ConsentRequired default to true when omitted.
type ClientConfig struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Type            string   `yaml:"type" json:"type"`
	RedirectURIs    []string `yaml:"redirectURIs" json:"redirectURIs"`
	GrantTypes      []string `yaml:"grantTypes" json:"grantTypes"`
	Scopes          []string `yaml:"scopes" json:"scopes"`
	Trusted         bool     `yaml:"trusted" json:"trusted"`
	ConsentRequired *bool    `yaml:"consentRequired" json:"consentRequired"`
	Active          *bool    `yaml:"active" json:"active"`
}

func (c *ClientConfig) validateAndInitialize() error {
	if c.ID == "" {
		return fmt.Errorf("id must be set")
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	switch c.Type {
	case "":
		c.Type = ClientTypePublic
	case ClientTypePublic, ClientTypeConfidential:
	default:
		return fmt.Errorf("unsupported client type '%s'", c.Type)
	}
	if len(c.RedirectURIs) == 0 {
		return fmt.Errorf("at least one redirect URI must be registered")
	}
	for _, uri := range c.RedirectURIs {
		if err := validateRedirectURI(uri); err != nil {
			return err
		}
	}
	if len(c.GrantTypes) == 0 {
		c.GrantTypes = []string{constants.AuthorizationServerGrantType}
	}
	if c.Scopes == nil {
		c.Scopes = []string{}
	}
	if c.ConsentRequired == nil {
		c.ConsentRequired = ptr(true)
	}
	if c.Active == nil {
		c.Active = ptr(true)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
