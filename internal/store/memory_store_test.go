package store

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestMemoryConsentStore(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	now := time.Now()

	s := NewMemoryConsentStore()
	s.nowFunc = func() time.Time { return now }

	_, ok, err := s.GetConsent(ctx, "app1", "user-1")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeFalse())

	rec := &ConsentRecord{
		ClientID:  "app1",
		UserID:    "user-1",
		Scopes:    []string{"openid"},
		GrantedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	g.Expect(s.SaveConsent(ctx, rec)).To(Succeed())

	got, ok, err := s.GetConsent(ctx, "app1", "user-1")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeTrue())
	g.Expect(got).To(Equal(rec))

	// Records are isolated per client and user.
	_, ok, _ = s.GetConsent(ctx, "app2", "user-1")
	g.Expect(ok).To(BeFalse())
	_, ok, _ = s.GetConsent(ctx, "app1", "user-2")
	g.Expect(ok).To(BeFalse())

	// An already expired record removes the previous one.
	expired := *rec
	expired.ExpiresAt = now.Add(-time.Second)
	g.Expect(s.SaveConsent(ctx, &expired)).To(Succeed())
	_, ok, _ = s.GetConsent(ctx, "app1", "user-1")
	g.Expect(ok).To(BeFalse())
}

func TestMemorySessionStore(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	now := time.Now()

	s := NewMemorySessionStore()
	s.nowFunc = func() time.Time { return now }

	p := &Pending{
		Request: &AuthorizationRequest{
			ResponseType: "code",
			ClientID:     "app1",
			RedirectURI:  "https://app1.example/cb",
			Scopes:       []string{"openid"},
			State:        "xyz",
		},
		CSRFToken: "csrf",
		Subject:   "user-1",
		ExpiresAt: now.Add(15 * time.Minute),
	}
	g.Expect(s.PutPending(ctx, "sid", p)).To(Succeed())

	got, ok, err := s.GetPending(ctx, "sid")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeTrue())
	g.Expect(got).To(Equal(p))

	// A newer pending authorization overwrites the older.
	newer := *p
	newer.CSRFToken = "csrf-2"
	g.Expect(s.PutPending(ctx, "sid", &newer)).To(Succeed())
	got, _, _ = s.GetPending(ctx, "sid")
	g.Expect(got.CSRFToken).To(Equal("csrf-2"))

	g.Expect(s.DeletePending(ctx, "sid")).To(Succeed())
	_, ok, err = s.GetPending(ctx, "sid")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(ok).To(BeFalse())

	expired := *p
	expired.ExpiresAt = now
	g.Expect(s.PutPending(ctx, "sid", &expired)).To(Succeed())
	_, ok, _ = s.GetPending(ctx, "sid")
	g.Expect(ok).To(BeFalse())
}
