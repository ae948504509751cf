package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/intrafind/ihub-apps-sub004/internal/config"
	"github.com/intrafind/ihub-apps-sub004/internal/constants"
	"github.com/intrafind/ihub-apps-sub004/internal/oautherr"
)

type Type string

const (
	TypePublic       Type = config.ClientTypePublic
	TypeConfidential Type = config.ClientTypeConfidential
)

// ErrNotFound is returned by a Store when no client has the requested id.
var ErrNotFound = errors.New("client not found")

// Client is the read-only view of a registered OAuth client.
type Client struct {
	ID              string
	Name            string
	Type            Type
	RedirectURIs    []string
	GrantTypes      []string
	Scopes          []string
	Trusted         bool
	ConsentRequired bool
	Active          bool
}

type Store interface {
	GetClient(ctx context.Context, id string) (*Client, error)
}

// IsValidRedirectURI reports whether uri is byte-identical to one of the
// registered redirect URIs. No normalization, prefix or wildcard matching.
func (c *Client) IsValidRedirectURI(uri string) bool {
	if uri == "" {
		return false
	}
	return slices.Contains(c.RedirectURIs, uri)
}

// AllowsScope reports whether the client may request scope. An empty
// allow-list permits every scope.
func (c *Client) AllowsScope(scope string) bool {
	return len(c.Scopes) == 0 || slices.Contains(c.Scopes, scope)
}

func (c *Client) IsPublic() bool {
	return c.Type == TypePublic
}

// Resolve looks up clientID and checks that it may use the authorization code
// grant. Every failure is a plain HTTP error because no redirect URI has been
// verified yet.
func Resolve(ctx context.Context, st Store, clientID string) (*Client, error) {
	if clientID == "" {
		return nil, oautherr.InvalidRequest("missing client_id")
	}
	c, err := st.GetClient(ctx, clientID)
	if errors.Is(err, ErrNotFound) {
		return nil, oautherr.New(http.StatusBadRequest, constants.ErrInvalidClient, "unknown client")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client '%s': %w", clientID, err)
	}
	if !c.Active {
		return nil, oautherr.AccessDenied("client is disabled")
	}
	if !slices.Contains(c.GrantTypes, constants.AuthorizationServerGrantType) {
		return nil, oautherr.New(http.StatusBadRequest, constants.ErrUnauthorizedClient,
			"client is not allowed to use the authorization code grant")
	}
	return c, nil
}

// ResolveWithRedirect resolves the client and verifies redirectURI against its
// allow-list. On success the redirect URI is a safe target for protocol errors.
func ResolveWithRedirect(ctx context.Context, st Store, clientID, redirectURI string) (*Client, error) {
	c, err := Resolve(ctx, st, clientID)
	if err != nil {
		return nil, err
	}
	if redirectURI == "" {
		return nil, oautherr.InvalidRequest("missing redirect_uri")
	}
	if !c.IsValidRedirectURI(redirectURI) {
		return nil, oautherr.InvalidRequest("redirect_uri is not registered for this client")
	}
	return c, nil
}
