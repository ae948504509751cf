package sessiontoken

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	. "github.com/onsi/gomega"
)

const (
	testIssuer   = "https://ihub.example"
	testAudience = "ihub-apps"
)

func TestGenerateKey(t *testing.T) {
	g := NewWithT(t)

	key, err := GenerateKey()
	g.Expect(err).ToNot(HaveOccurred())

	kid, ok := key.KeyID()
	g.Expect(ok).To(BeTrue())
	g.Expect(kid).To(MatchRegexp(`^[0-9a-f]{64}$`))

	set, err := PublicSet(key)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(set.Len()).To(Equal(1))
	pub, ok := set.Key(0)
	g.Expect(ok).To(BeTrue())
	pubKID, _ := pub.KeyID()
	g.Expect(pubKID).To(Equal(kid))

	b, err := json.Marshal(set)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(string(b)).ToNot(ContainSubstring(`"d":`))
}

func TestSignAndVerify(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	key, err := GenerateKey()
	g.Expect(err).ToNot(HaveOccurred())
	set, err := PublicSet(key)
	g.Expect(err).ToNot(HaveOccurred())

	signer := NewSigner(key, testIssuer, testAudience, time.Hour)
	verifier := NewKeySetVerifier(set, testIssuer, testAudience)

	token, exp, err := signer.Sign(&Principal{
		Subject: "user-1",
		Email:   "user@example.com",
		Name:    "User One",
		Groups:  []string{"admins", "users"},
	}, now)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(exp).To(Equal(now.Add(time.Hour)))

	p, err := verifier.Verify(ctx, token, now.Add(time.Minute))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(p).To(Equal(&Principal{
		Subject: "user-1",
		Email:   "user@example.com",
		Name:    "User One",
		Groups:  []string{"admins", "users"},
	}))

	// Minimal principal.
	token, _, err = signer.Sign(&Principal{Subject: "user-2"}, now)
	g.Expect(err).ToNot(HaveOccurred())
	p, err = verifier.Verify(ctx, token, now)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(p).To(Equal(&Principal{Subject: "user-2"}))
}

func TestVerify_Rejects(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	otherKey, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	set, err := PublicSet(key)
	if err != nil {
		t.Fatal(err)
	}

	signed := func(s *Signer) string {
		tok, _, err := s.Sign(&Principal{Subject: "user-1"}, now)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}

	noSubject, err := jwt.NewBuilder().
		Issuer(testIssuer).
		Audience([]string{testAudience}).
		Expiration(now.Add(time.Hour)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	noSubjectToken, err := jwt.Sign(noSubject, jwt.WithKey(Algorithm(), key))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
		now   time.Time
	}{
		{
			name:  "expired",
			token: signed(NewSigner(key, testIssuer, testAudience, time.Hour)),
			now:   now.Add(2 * time.Hour),
		},
		{
			name:  "wrong issuer",
			token: signed(NewSigner(key, "https://evil.example", testAudience, time.Hour)),
			now:   now,
		},
		{
			name:  "wrong audience",
			token: signed(NewSigner(key, testIssuer, "other", time.Hour)),
			now:   now,
		},
		{
			name:  "unknown key",
			token: signed(NewSigner(otherKey, testIssuer, testAudience, time.Hour)),
			now:   now,
		},
		{
			name:  "garbage",
			token: "not-a-jwt",
			now:   now,
		},
		{
			name:  "tampered",
			token: signed(NewSigner(key, testIssuer, testAudience, time.Hour)) + "x",
			now:   now,
		},
		{
			name:  "no subject",
			token: string(noSubjectToken),
			now:   now,
		},
	}

	verifier := NewKeySetVerifier(set, testIssuer, testAudience)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			p, err := verifier.Verify(context.Background(), tt.token, tt.now)
			g.Expect(err).To(HaveOccurred())
			g.Expect(p).To(BeNil())
		})
	}
}

func TestSigner_MissingSubject(t *testing.T) {
	g := NewWithT(t)

	key, err := GenerateKey()
	g.Expect(err).ToNot(HaveOccurred())

	_, _, err = NewSigner(key, "", "", 0).Sign(&Principal{}, time.Now())
	g.Expect(err).To(MatchError(ErrMissingSubject))
}

func TestLoadFromFiles(t *testing.T) {
	g := NewWithT(t)
	dir := t.TempDir()
	now := time.Now().Truncate(time.Second)

	key, err := GenerateKey()
	g.Expect(err).ToNot(HaveOccurred())

	keyJSON, err := json.Marshal(key)
	g.Expect(err).ToNot(HaveOccurred())
	keyFile := filepath.Join(dir, "key.json")
	g.Expect(os.WriteFile(keyFile, keyJSON, 0o600)).To(Succeed())

	// A set holding private material is reduced to public keys.
	privateSet := jwk.NewSet()
	g.Expect(privateSet.AddKey(key)).To(Succeed())
	setJSON, err := json.Marshal(privateSet)
	g.Expect(err).ToNot(HaveOccurred())
	setFile := filepath.Join(dir, "jwks.json")
	g.Expect(os.WriteFile(setFile, setJSON, 0o600)).To(Succeed())

	loadedKey, err := LoadPrivateKey(keyFile)
	g.Expect(err).ToNot(HaveOccurred())

	verifier, err := NewKeySetVerifierFromFile(setFile, testIssuer, testAudience)
	g.Expect(err).ToNot(HaveOccurred())
	pub, ok := verifier.set.Key(0)
	g.Expect(ok).To(BeTrue())
	_, isPrivate := pub.(jwk.RSAPrivateKey)
	g.Expect(isPrivate).To(BeFalse())

	token, _, err := NewSigner(loadedKey, testIssuer, testAudience, time.Hour).Sign(&Principal{Subject: "user-1"}, now)
	g.Expect(err).ToNot(HaveOccurred())
	p, err := verifier.Verify(context.Background(), token, now)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(p.Subject).To(Equal("user-1"))

	_, err = LoadKeySet(filepath.Join(dir, "absent.json"))
	g.Expect(err).To(HaveOccurred())

	empty := filepath.Join(dir, "empty.json")
	g.Expect(os.WriteFile(empty, []byte(`{"keys":[]}`), 0o600)).To(Succeed())
	_, err = LoadKeySet(empty)
	g.Expect(err).To(MatchError("key set file '" + empty + "' has no keys"))
}
