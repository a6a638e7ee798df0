package session

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/nickolaschua/beyondbinary-sub001/internal/config"
	"github.com/nickolaschua/beyondbinary-sub001/internal/protocol"
)

// Gate decides whether a connection may proceed. The manager only needs
// a yes/no and the close code to use on "no".
type Gate interface {
	Allow(r *http.Request) bool
	CloseCode() int
}

// APIKeyGate validates the api_key query parameter (or X-API-Key header)
// against a configured key or bcrypt hash. An unconfigured gate allows
// everything, which is how local development runs.
type APIKeyGate struct {
	key  string
	hash string
}

func NewAPIKeyGate(cfg *config.Config) *APIKeyGate {
	return &APIKeyGate{key: cfg.APIKey, hash: cfg.APIKeyHash}
}

func (g *APIKeyGate) Allow(r *http.Request) bool {
	if g.key == "" && g.hash == "" {
		return true
	}

	token := r.URL.Query().Get("api_key")
	if token == "" {
		token = r.Header.Get("X-API-Key")
	}
	if token == "" {
		return false
	}

	if g.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.hash), []byte(token)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(g.key), []byte(token)) == 1
}

func (g *APIKeyGate) CloseCode() int {
	return protocol.CloseUnauthorized
}
