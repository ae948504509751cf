package store

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// ConsentRecord is the set of scopes a user granted to a client, valid until
// ExpiresAt.
type ConsentRecord struct {
	ClientID  string    `json:"client_id"`
	UserID    string    `json:"user_id"`
	Scopes    []string  `json:"scopes"`
	GrantedAt time.Time `json:"granted_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Covers reports whether the record is still valid at now and includes every
// scope in scopes.
func (c *ConsentRecord) Covers(scopes []string, now time.Time) bool {
	if !now.Before(c.ExpiresAt) {
		return false
	}
	for _, s := range scopes {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}

// HasConsent reports whether userID already granted clientID all of scopes.
func HasConsent(ctx context.Context, st ConsentStore, clientID, userID string,
	scopes []string, now time.Time) (bool, error) {

	rec, ok, err := st.GetConsent(ctx, clientID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get consent: %w", err)
	}
	return ok && rec.Covers(scopes, now), nil
}

// RememberConsent records that userID granted scopes to clientID for ttl. Scopes
// of a still-valid previous grant are kept.
func RememberConsent(ctx context.Context, st ConsentStore, clientID, userID string,
	scopes []string, now time.Time, ttl time.Duration) error {

	granted := slices.Clone(scopes)
	prev, ok, err := st.GetConsent(ctx, clientID, userID)
	if err != nil {
		return fmt.Errorf("failed to get consent: %w", err)
	}
	if ok && now.Before(prev.ExpiresAt) {
		for _, s := range prev.Scopes {
			if !slices.Contains(granted, s) {
				granted = append(granted, s)
			}
		}
	}

	rec := &ConsentRecord{
		ClientID:  clientID,
		UserID:    userID,
		Scopes:    granted,
		GrantedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := st.SaveConsent(ctx, rec); err != nil {
		return fmt.Errorf("failed to save consent: %w", err)
	}
	return nil
}
