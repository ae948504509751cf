package client

import (
	"context"

	"github.com/intrafind/ihub-apps-sub004/internal/config"
)

// StaticStore serves the clients declared in the configuration file.
type StaticStore struct {
	clients map[string]*Client
}

func NewStaticStore(confs []config.ClientConfig) *StaticStore {
	clients := make(map[string]*Client, len(confs))
	for _, c := range confs {
		clients[c.ID] = &Client{
			ID:              c.ID,
			Name:            c.Name,
			Type:            Type(c.Type),
			RedirectURIs:    c.RedirectURIs,
			GrantTypes:      c.GrantTypes,
			Scopes:          c.Scopes,
			Trusted:         c.Trusted,
			ConsentRequired: c.ConsentRequired == nil || *c.ConsentRequired,
			Active:          c.Active == nil || *c.Active,
		}
	}
	return &StaticStore{clients: clients}
}

func (s *StaticStore) GetClient(_ context.Context, id string) (*Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}
