/*
Package pow implements an optional Proof-of-Work gate for account creation.

A client fetches a nonce, searches for a counter whose SHA-256 hash of nonce+counter
starts with the configured number of hex zeros, and trades the solution for a short
lived, single use Proof Token sent with the protected request.
*/
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/resp"
)

const (
	// TokenHeaderKey is the HTTP header key used by the client to send the Proof Token.
	TokenHeaderKey = "X-PoW-Token"

	// ProofTokenDuration is the validity period for the Proof Token issued after successful PoW validation.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is the validity period for the challenge Nonce.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	ErrNonceInvalid      = errors.New("pow: nonce expired or invalid")
	ErrInsufficientProof = errors.New("pow: proof does not meet difficulty requirement")
)

// PoWManager is responsible for managing the lifecycle of PoW challenges and Proof Tokens.
// It is safe for concurrent use. A difficulty of 0 disables the gate.
type PoWManager struct {
	difficulty int

	// mu protects nonceStore and tokenStore.
	mu         sync.Mutex
	nonceStore map[string]time.Time
	tokenStore map[string]time.Time
}

// NewPoWManager creates a PoWManager and starts a cleanup goroutine that runs
// until ctx is cancelled.
func NewPoWManager(ctx context.Context, difficulty int) *PoWManager {
	if difficulty < 0 {
		difficulty = 0
	}

	mgr := &PoWManager{
		difficulty: difficulty,
		nonceStore: make(map[string]time.Time),
		tokenStore: make(map[string]time.Time),
	}

	go mgr.cleanupExpiredEntries(ctx)

	return mgr
}

// Enabled reports whether protected requests need a Proof Token.
func (m *PoWManager) Enabled() bool {
	return m.difficulty > 0
}

// Difficulty returns the number of leading hex zeros a solution needs.
func (m *PoWManager) Difficulty() int {
	return m.difficulty
}

// GenerateNonce generates a unique Nonce string for the PoW challenge and stores it for validation.
func (m *PoWManager) GenerateNonce() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	nonce := uuid.New().String()
	m.nonceStore[nonce] = time.Now().Add(NonceExpiryDuration)
	return nonce
}

// ValidateProof checks nonce+counter against the difficulty. On success the nonce
// is consumed and a Proof Token is returned.
func (m *PoWManager) ValidateProof(nonce, counter string) (string, error) {
	hash := sha256.Sum256([]byte(nonce + counter))
	hashStr := hex.EncodeToString(hash[:])

	m.mu.Lock()
	defer m.mu.Unlock()

	expiryTime, ok := m.nonceStore[nonce]
	if !ok || time.Now().After(expiryTime) {
		return "", ErrNonceInvalid
	}

	if !strings.HasPrefix(hashStr, strings.Repeat("0", m.difficulty)) {
		return "", ErrInsufficientProof
	}

	delete(m.nonceStore, nonce)

	token := uuid.New().String()
	m.tokenStore[token] = time.Now().Add(ProofTokenDuration)
	return token, nil
}

// ConsumeProofToken reports whether the request carries a live Proof Token in the
// X-PoW-Token header and invalidates it.
func (m *PoWManager) ConsumeProofToken(r *http.Request) bool {
	token := r.Header.Get(TokenHeaderKey)
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiryTime, ok := m.tokenStore[token]
	if !ok {
		return false
	}
	delete(m.tokenStore, token)

	return !time.Now().After(expiryTime)
}

// Middleware rejects requests without a Proof Token while the gate is enabled.
func (m *PoWManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Enabled() && !m.ConsumeProofToken(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// cleanupExpiredEntries periodically drops expired nonces and tokens.
func (m *PoWManager) cleanupExpiredEntries(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		now := time.Now()

		for nonce, expiry := range m.nonceStore {
			if now.After(expiry) {
				delete(m.nonceStore, nonce)
			}
		}

		for token, expiry := range m.tokenStore {
			if now.After(expiry) {
				delete(m.tokenStore, token)
			}
		}
		m.mu.Unlock()
	}
}
