package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ducoin/boucherie-backend/api/responses"
	pkgerrors "github.com/ducoin/boucherie-backend/pkg/errors"
	"github.com/ducoin/boucherie-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// ThrottlePolicy caps attempts against one auth surface (login or register)
// inside a rolling window. PerIP counts every request from a caller address;
// PerAccount counts requests naming the same email, so a credential-stuffing
// run spread over many addresses still trips the limit.
type ThrottlePolicy struct {
	Surface    string
	Window     time.Duration
	PerIP      int
	PerAccount int
}

func (p ThrottlePolicy) active() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerAccount > 0)
}

// AuthThrottle guards the login and register endpoints. Counters live in
// Redis so limits hold across instances; keys are
// throttle:<surface>:ip:<addr> and throttle:<surface>:acct:<sha256(email)>.
// Raw emails never reach the counter keyspace.
func AuthThrottle(policy ThrottlePolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	surface := strings.ToLower(strings.TrimSpace(policy.Surface))
	if surface == "" {
		surface = "auth"
	}

	return func(next http.Handler) http.Handler {
		if !policy.active() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if policy.PerIP > 0 {
				if addr := callerIP(r); addr != "" {
					key := "throttle:" + surface + ":ip:" + addr
					count, err := store.IncrWithTTL(ctx, key, policy.Window)
					if err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auth throttle"))
						return
					}
					if count > int64(policy.PerIP) {
						blockAttempt(r, logg, surface, "ip", count, policy.PerIP)
						responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
						return
					}
				}
			}

			if policy.PerAccount > 0 {
				email, ok := peekEmail(r)
				if ok {
					key := "throttle:" + surface + ":acct:" + digest(email)
					count, err := store.IncrWithTTL(ctx, key, policy.Window)
					if err != nil {
						responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "auth throttle"))
						return
					}
					if count > int64(policy.PerAccount) {
						blockAttempt(r, logg, surface, "account", count, policy.PerAccount)
						responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func blockAttempt(r *http.Request, logg *logger.Logger, surface, scope string, count int64, limit int) {
	if logg == nil {
		return
	}
	ctx := logg.WithFields(r.Context(), map[string]any{
		"surface":  surface,
		"scope":    scope,
		"attempts": count,
		"limit":    limit,
	})
	logg.Warn(ctx, "auth.throttled")
}

// peekEmail reads the email field out of the request body without consuming
// it. Normalized the same way the auth service normalizes credentials, so
// "User@X" and "user@x" share one counter.
func peekEmail(r *http.Request) (string, bool) {
	if r.Body == nil {
		return "", false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	return email, email != ""
}

func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// callerIP resolves the client address, preferring the proxy chain headers
// the deployment's load balancer sets.
func callerIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	if addr := strings.TrimSpace(r.Header.Get("X-Real-IP")); addr != "" {
		return addr
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
