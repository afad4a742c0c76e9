package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appErr "github.com/hirehub/server/pkg/errors"
)

// MinSecretLen is the minimum HMAC key length in bytes.
const MinSecretLen = 32

// DefaultTTL is the lifetime of every issued token.
const DefaultTTL = 24 * time.Hour

// UserID is a user id claim that accepts both JSON numbers and numeric strings.
type UserID int64

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("id claim: %w", err)
		}
		*id = UserID(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("id claim: %w", err)
		}
		v = int64(f)
	}
	*id = UserID(v)
	return nil
}

// OptionalUserID is a user id carried by a client payload. Numbers and numeric
// strings decode to a value; null, "", "null" and anything unparseable decode
// to absent instead of failing the payload.
type OptionalUserID struct {
	id    int64
	valid bool
}

// SomeUserID returns a present OptionalUserID.
func SomeUserID(id int64) OptionalUserID { return OptionalUserID{id: id, valid: true} }

func (o *OptionalUserID) UnmarshalJSON(b []byte) error {
	var id UserID
	if err := id.UnmarshalJSON(b); err != nil {
		*o = OptionalUserID{}
		return nil
	}
	*o = SomeUserID(int64(id))
	return nil
}

func (o OptionalUserID) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, o.id, 10), nil
}

// Ptr returns the id, or nil when absent.
func (o OptionalUserID) Ptr() *int64 {
	if !o.valid {
		return nil
	}
	v := o.id
	return &v
}

// Claims is the payload of a bearer token: sub=email, id=user id, iat, exp.
type Claims struct {
	UserID UserID `json:"id"`
	jwt.RegisteredClaims
}

// Identity is what a verified token attests to.
type Identity struct {
	Email     string
	UserID    int64
	ExpiresAt time.Time
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a TokenManager.
type Option func(*TokenManager)

// WithClock overrides the time source used for iat, exp and verification.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) { m.now = now }
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *TokenManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewTokenManager fails with a config error when the secret is shorter than MinSecretLen.
func NewTokenManager(secret []byte, opts ...Option) (*TokenManager, error) {
	if len(secret) < MinSecretLen {
		return nil, appErr.New(appErr.CodeConfig, fmt.Sprintf("signing secret must be at least %d bytes", MinSecretLen))
	}
	m := &TokenManager{secret: append([]byte(nil), secret...), ttl: DefaultTTL, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue mints a token for the given email and user id.
func (m *TokenManager) Issue(email string, userID int64) (string, error) {
	iat := m.now().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: UserID(userID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(m.ttl)),
		},
	})
	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", appErr.Wrap(err, appErr.CodeInternal, "sign token failed")
	}
	return s, nil
}

// Verify checks the signature and expiry. Any failure is reported as CodeInvalidToken.
func (m *TokenManager) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, appErr.Wrap(err, appErr.CodeInvalidToken, "invalid token")
	}
	if !token.Valid || claims.Subject == "" {
		return Identity{}, appErr.New(appErr.CodeInvalidToken, "invalid token")
	}
	return Identity{
		Email:     claims.Subject,
		UserID:    int64(claims.UserID),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ExtractSubject reads sub without verifying the signature. For logging only.
func ExtractSubject(tokenStr string) string {
	c, err := unverified(tokenStr)
	if err != nil {
		return ""
	}
	return c.Subject
}

// ExtractUserID reads the id claim without verifying the signature. For logging only.
func ExtractUserID(tokenStr string) (int64, bool) {
	c, err := unverified(tokenStr)
	if err != nil {
		return 0, false
	}
	return int64(c.UserID), true
}

func unverified(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// IsInvalidToken reports whether err came from Verify.
func IsInvalidToken(err error) bool {
	return appErr.IsCode(err, appErr.CodeInvalidToken)
}
