package publish

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/nacl/secretbox"
)

// encryptedPrefix marks a token file sealed with secretbox
const encryptedPrefix = "secretbox:"

// Token is a member access token as persisted in the token file
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	ObtainedAt  time.Time `json:"obtained_at,omitempty"`
	// IDToken is the OpenID Connect token returned with the openid scope
	IDToken string `json:"id_token,omitempty"`
}

// Expired reports whether the token has a known expiry at or before now
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Subject returns the "sub" claim of the id_token. The signature is not
// verified: the token came straight from the token endpoint over TLS and is
// only used to build the author URN.
func (t *Token) Subject() (string, bool) {
	if t.IDToken == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

// TokenStore reads and writes the token file. When Key is set the file is
// sealed with NaCl secretbox.
type TokenStore struct {
	Path string
	Key  *[32]byte
}

// ParseKey decodes a 64-character hex string into a secretbox key.
// An empty string yields a nil key.
func ParseKey(hexKey string) (*[32]byte, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid token key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid token key: want 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

// Load reads the token file. A missing file returns ErrNoCredential.
func (s *TokenStore) Load() (*Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, encryptedPrefix) {
		if s.Key == nil {
			return nil, fmt.Errorf("token file %s is encrypted but no key is configured", s.Path)
		}
		plain, err := openSealed(strings.TrimPrefix(content, encryptedPrefix), s.Key)
		if err != nil {
			return nil, err
		}
		data = plain
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, ErrNoCredential
	}
	return &tok, nil
}

// Save writes the token file with owner-only permissions.
func (s *TokenStore) Save(tok *Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if s.Key != nil {
		sealed, err := seal(data, s.Key)
		if err != nil {
			return err
		}
		data = []byte(encryptedPrefix + sealed + "\n")
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func seal(plain []byte, key *[32]byte) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func openSealed(encoded string, key *[32]byte) ([]byte, error) {
	box, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	if len(box) < 24 {
		return nil, errors.New("token file is truncated")
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	plain, ok := secretbox.Open(nil, box[24:], &nonce, key)
	if !ok {
		return nil, errors.New("failed to decrypt token file: wrong key or corrupted file")
	}
	return plain, nil
}

// LoadCredential resolves the access token: a non-empty envToken wins,
// otherwise the token file is read. An expired file token returns ErrTokenExpired.
func LoadCredential(envToken string, store *TokenStore, now time.Time) (*Token, error) {
	if envToken = strings.TrimSpace(envToken); envToken != "" {
		return &Token{AccessToken: envToken}, nil
	}
	if store == nil || store.Path == "" {
		return nil, ErrNoCredential
	}
	tok, err := store.Load()
	if err != nil {
		return nil, err
	}
	if tok.Expired(now) {
		return nil, fmt.Errorf("%w on %s; run the auth command again", ErrTokenExpired, tok.ExpiresAt.Format("2006-01-02"))
	}
	return tok, nil
}
