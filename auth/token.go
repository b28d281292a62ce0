package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Identity is the shopper a request acts for. An empty UserID means anonymous.
// Token keeps the raw session token even when it did not resolve to a user.
type Identity struct {
	UserID string
	Token  string
}

// Anonymous reports whether no valid session backs the identity.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// HasToken reports whether the request carried any session token at all.
func (i Identity) HasToken() bool {
	return i.Token != ""
}

// Resolver turns session tokens into identities. Without a secret the payload
// is decoded the way the browser did (no signature check); with a secret the
// HMAC signature must verify too.
type Resolver struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Resolver)

// WithSecret enables HMAC signature verification.
func WithSecret(secret string) Option {
	return func(r *Resolver) {
		if s := strings.TrimSpace(secret); s != "" {
			r.secret = []byte(s)
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails: malformed, expired or absent tokens are anonymous.
func (r *Resolver) Resolve(token string) Identity {
	token = strings.TrimSpace(token)
	id := Identity{Token: token}
	if token == "" {
		return id
	}
	claims, err := r.Claims(token)
	if err != nil {
		return id
	}
	id.UserID = claims.UserID
	return id
}

// Claims is the subset of the session payload the storefront reads.
type Claims struct {
	UserID    string
	ExpiresAt int64
}

// Claims decodes token and applies the expiry rule. The error explains why a
// token was treated as anonymous.
func (r *Resolver) Claims(token string) (Claims, error) {
	mc, err := r.parse(token)
	if err != nil {
		return Claims{}, err
	}

	userID, err := stringClaim(mc["id"])
	if err != nil {
		return Claims{}, fmt.Errorf("claim id: %w", err)
	}
	if userID == "" {
		return Claims{}, fmt.Errorf("token has no id claim")
	}

	exp, err := int64Claim(mc["exp"])
	if err != nil {
		return Claims{}, fmt.Errorf("claim exp: %w", err)
	}
	if exp != 0 && exp < r.now().Unix() {
		return Claims{}, fmt.Errorf("token expired at %d", exp)
	}
	return Claims{UserID: userID, ExpiresAt: exp}, nil
}

func (r *Resolver) parse(token string) (jwt.MapClaims, error) {
	if r.secret == nil {
		return decodePayload(token)
	}

	parser := jwt.NewParser(jwt.WithJSONNumber(), jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}

	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token signature: %w", err)
	}
	return claims, nil
}

// decodePayload reads only the middle segment, so a token whose header is
// unreadable still resolves as long as its payload does.
func decodePayload(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("decode token: want 3 segments, got %d", len(parts))
	}
	raw, err := jwt.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	claims := jwt.MapClaims{}
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("decode token payload: %w", err)
	}
	return claims, nil
}

func stringClaim(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(val), nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}

func int64Claim(v any) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	case float64:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
