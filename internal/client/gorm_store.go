package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// clientRecord is the SQL row of an OAuth client.
type clientRecord struct {
	ID              string   `gorm:"primaryKey"`
	Name            string   `gorm:"not null"`
	Type            string   `gorm:"not null"`
	RedirectURIs    []string `gorm:"serializer:json"`
	GrantTypes      []string `gorm:"serializer:json"`
	Scopes          []string `gorm:"serializer:json"`
	Trusted         bool
	ConsentRequired bool `gorm:"not null"`
	Active          bool `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (clientRecord) TableName() string {
	return "oauth_clients"
}

// GormStore reads clients from the oauth_clients table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the oauth_clients table.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&clientRecord{}); err != nil {
		return fmt.Errorf("failed to migrate oauth_clients: %w", err)
	}
	return nil
}

func (s *GormStore) GetClient(ctx context.Context, id string) (*Client, error) {
	var rec clientRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query oauth_clients: %w", err)
	}
	return &Client{
		ID:              rec.ID,
		Name:            rec.Name,
		Type:            Type(rec.Type),
		RedirectURIs:    rec.RedirectURIs,
		GrantTypes:      rec.GrantTypes,
		Scopes:          rec.Scopes,
		Trusted:         rec.Trusted,
		ConsentRequired: rec.ConsentRequired,
		Active:          rec.Active,
	}, nil
}

// SaveClient upserts c. Used by seeding and tests; the management surface
// lives elsewhere.
func (s *GormStore) SaveClient(ctx context.Context, c *Client) error {
	rec := clientRecord{
		ID:              c.ID,
		Name:            c.Name,
		Type:            string(c.Type),
		RedirectURIs:    c.RedirectURIs,
		GrantTypes:      c.GrantTypes,
		Scopes:          c.Scopes,
		Trusted:         c.Trusted,
		ConsentRequired: c.ConsentRequired,
		Active:          c.Active,
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save client '%s': %w", c.ID, err)
	}
	return nil
}
