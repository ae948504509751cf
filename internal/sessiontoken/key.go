package sessiontoken

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

func Algorithm() jwa.SignatureAlgorithm { return jwa.RS256() }

// GenerateKey returns a new RSA-2048 private JWK whose key ID is the hex
// SHA-256 thumbprint of its public half.
func GenerateKey() (jwk.Key, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}

	private, err := jwk.Import(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to convert rsa key to jwk: %w", err)
	}

	public, err := private.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get public key from jwk: %w", err)
	}

	thumbprint, err := public.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to get thumbprint from public key: %w", err)
	}

	if err := private.Set(jwk.KeyIDKey, fmt.Sprintf("%x", thumbprint)); err != nil {
		return nil, fmt.Errorf("failed to set key id: %w", err)
	}
	if err := private.Set(jwk.AlgorithmKey, Algorithm()); err != nil {
		return nil, fmt.Errorf("failed to set key algorithm: %w", err)
	}
	return private, nil
}

// PublicSet wraps the public halves of keys into a JWK set suitable for
// publishing to the services that verify session tokens.
func PublicSet(keys ...jwk.Key) (jwk.Set, error) {
	set := jwk.NewSet()
	for _, k := range keys {
		if err := set.AddKey(k); err != nil {
			return nil, fmt.Errorf("failed to add key to set: %w", err)
		}
	}
	public, err := jwk.PublicSetOf(set)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key set: %w", err)
	}
	return public, nil
}

// LoadKeySet reads a JWK set from fileName and strips any private material.
func LoadKeySet(fileName string) (jwk.Set, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read key set file '%s': %w", fileName, err)
	}
	set, err := jwk.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key set file '%s': %w", fileName, err)
	}
	if set.Len() == 0 {
		return nil, fmt.Errorf("key set file '%s' has no keys", fileName)
	}
	public, err := jwk.PublicSetOf(set)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key set: %w", err)
	}
	return public, nil
}

// LoadPrivateKey reads a single private JWK from fileName.
func LoadPrivateKey(fileName string) (jwk.Key, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file '%s': %w", fileName, err)
	}
	key, err := jwk.ParseKey(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file '%s': %w", fileName, err)
	}
	if _, ok := key.KeyID(); !ok {
		return nil, fmt.Errorf("key in file '%s' has no key ID", fileName)
	}
	return key, nil
}
