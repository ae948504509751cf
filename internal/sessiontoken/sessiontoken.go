package sessiontoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	claimEmail  = "email"
	claimName   = "name"
	claimGroups = "groups"

	defaultTokenDuration = 8 * time.Hour
)

var ErrMissingSubject = errors.New("session token has no subject")

// Principal is the authenticated user a session token was issued to.
type Principal struct {
	Subject string
	Email   string
	Name    string
	Groups  []string
}

type Verifier interface {
	Verify(ctx context.Context, token string, now time.Time) (*Principal, error)
}

// KeySetVerifier verifies RS256 session tokens against a fixed JWK set.
type KeySetVerifier struct {
	set      jwk.Set
	issuer   string
	audience string
}

func NewKeySetVerifier(set jwk.Set, issuer, audience string) *KeySetVerifier {
	return &KeySetVerifier{
		set:      set,
		issuer:   issuer,
		audience: audience,
	}
}

// NewKeySetVerifierFromFile loads the JWK set from fileName.
func NewKeySetVerifierFromFile(fileName, issuer, audience string) (*KeySetVerifier, error) {
	set, err := LoadKeySet(fileName)
	if err != nil {
		return nil, err
	}
	return NewKeySetVerifier(set, issuer, audience), nil
}

func (k *KeySetVerifier) Verify(_ context.Context, token string, now time.Time) (*Principal, error) {
	opts := []jwt.ParseOption{
		jwt.WithKeySet(k.set, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	}
	if k.issuer != "" {
		opts = append(opts, jwt.WithIssuer(k.issuer))
	}
	if k.audience != "" {
		opts = append(opts, jwt.WithAudience(k.audience))
	}

	tok, err := jwt.ParseString(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session token: %w", err)
	}
	if exp, ok := tok.Expiration(); !ok || !now.Before(exp) {
		return nil, errors.New("session token has no valid expiration")
	}

	sub, ok := tok.Subject()
	if !ok || sub == "" {
		return nil, ErrMissingSubject
	}

	p := &Principal{
		Subject: sub,
		Email:   stringClaim(tok, claimEmail),
		Name:    stringClaim(tok, claimName),
	}
	var groups any
	if err := tok.Get(claimGroups, &groups); err == nil {
		switch v := groups.(type) {
		case []any:
			for _, g := range v {
				if s, ok := g.(string); ok {
					p.Groups = append(p.Groups, s)
				}
			}
		case []string:
			p.Groups = v
		case string:
			p.Groups = []string{v}
		}
	}
	return p, nil
}

func stringClaim(tok jwt.Token, name string) string {
	var v any
	if err := tok.Get(name, &v); err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Signer issues session tokens. The login flow of the platform is the usual
// issuer; this one serves operators and tests.
type Signer struct {
	key      jwk.Key
	issuer   string
	audience string
	duration time.Duration
}

func NewSigner(key jwk.Key, issuer, audience string, duration time.Duration) *Signer {
	if duration <= 0 {
		duration = defaultTokenDuration
	}
	return &Signer{
		key:      key,
		issuer:   issuer,
		audience: audience,
		duration: duration,
	}
}

func (s *Signer) Sign(p *Principal, now time.Time) (string, time.Time, error) {
	if p.Subject == "" {
		return "", time.Time{}, ErrMissingSubject
	}

	exp := now.Add(s.duration)
	b := jwt.NewBuilder().
		Subject(p.Subject).
		Expiration(exp).
		NotBefore(now).
		IssuedAt(now).
		JwtID(uuid.NewString())
	if s.issuer != "" {
		b = b.Issuer(s.issuer)
	}
	if s.audience != "" {
		b = b.Audience([]string{s.audience})
	}
	if p.Email != "" {
		b = b.Claim(claimEmail, p.Email)
	}
	if p.Name != "" {
		b = b.Claim(claimName, p.Name)
	}
	if len(p.Groups) > 0 {
		b = b.Claim(claimGroups, p.Groups)
	}

	tok, err := b.Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(Algorithm(), s.key))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return string(signed), exp, nil
}
