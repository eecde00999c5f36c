// Package uploadtoken issues signed, single-use, expiring upload slot tokens.
// A token names the object key its upload will be stored under; redeeming it
// consumes it.
package uploadtoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultExpiry = 15 * time.Minute

var (
	ErrMalformed = errors.New("invalid upload token format")
	ErrSignature = errors.New("invalid upload token signature")
	ErrExpired   = errors.New("upload token expired")
	ErrUsed      = errors.New("upload token already used")
)

type Token struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"exp"`
	Nonce     string `json:"nce"`
}

func (t *Token) Expiry() time.Time {
	return time.Unix(t.ExpiresAt, 0)
}

type Issuer struct {
	secret []byte
	ttl    time.Duration

	mu   sync.Mutex
	used *expirable.LRU[string, struct{}]
}

// NewIssuer returns an issuer signing with secret. Used tokens are remembered
// until they would fail the expiry check anyway. The set is evicted by age
// only, never by count.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultExpiry
	}
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Issuer{
		secret: key,
		ttl:    ttl,
		used:   expirable.NewLRU[string, struct{}](0, nil, ttl+time.Minute),
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed token for key.
func (i *Issuer) Issue(key string) (string, *Token, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", nil, err
	}

	tok := &Token{
		Key:       key,
		ExpiresAt: time.Now().Add(i.ttl).Unix(),
		Nonce:     hex.EncodeToString(nonce),
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return "", nil, err
	}

	return base64.RawURLEncoding.EncodeToString(data) + "." + i.sign(data), tok, nil
}

// Validate checks signature and expiry without consuming the token.
func (i *Issuer) Validate(tokenString string) (*Token, error) {
	dataPart, sigPart, ok := strings.Cut(tokenString, ".")
	if !ok || dataPart == "" || sigPart == "" {
		return nil, ErrMalformed
	}

	decoded, err := base64.RawURLEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, ErrMalformed
	}

	if !hmac.Equal([]byte(i.sign(decoded)), []byte(sigPart)) {
		return nil, ErrSignature
	}

	var tok Token
	if err := json.Unmarshal(decoded, &tok); err != nil || tok.Key == "" {
		return nil, ErrMalformed
	}

	if time.Now().Unix() > tok.ExpiresAt {
		return nil, ErrExpired
	}

	return &tok, nil
}

// Redeem validates the token and marks it used. A second redeem of the same
// token fails with ErrUsed.
func (i *Issuer) Redeem(tokenString string) (*Token, error) {
	tok, err := i.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.used.Contains(tok.Nonce) {
		return nil, ErrUsed
	}
	i.used.Add(tok.Nonce, struct{}{})

	return tok, nil
}

func (i *Issuer) sign(data []byte) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}
