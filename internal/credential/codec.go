// Package credential hashes passwords, signs session tokens and mints
// single-use tokens for password reset and email verification.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tour-booking/internal/config"
	appErrors "tour-booking/pkg/errors"
)

const (
	DefaultBcryptCost = 12
	OneTimeTokenTTL   = 10 * time.Minute
	oneTimeTokenBytes = 32
)

// Claims is the session token payload: {id, iat, exp}.
type Claims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// IssuedAtUnix returns the issue time in whole seconds.
func (c *Claims) IssuedAtUnix() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// OneTimeToken is handed out as Plain; only Hash is stored.
type OneTimeToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

type Codec struct {
	secret    []byte
	expiresIn time.Duration
	cost      int
	now       func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(cfg config.JWTConfig, opts ...Option) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("credential: empty signing secret")
	}
	if cfg.ExpiresIn <= 0 {
		return nil, errors.New("credential: token lifetime must be positive")
	}

	cost := cfg.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("credential: bcrypt cost %d out of range", cost)
	}

	c := &Codec{
		secret:    []byte(cfg.Secret),
		expiresIn: cfg.ExpiresIn,
		cost:      cost,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (c *Codec) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueToken signs a session token for userID with HS256.
func (c *Codec) IssueToken(userID uuid.UUID) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiresIn)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// VerifyToken fails with ErrTokenExpired for expired tokens and
// ErrInvalidToken for everything else that does not check out.
func (c *Codec) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrTokenExpired
		}
		return nil, appErrors.NewAppError(appErrors.KindUnauthenticated, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Message, errors.Join(appErrors.ErrInvalidToken, err))
	}
	if claims.UserID == uuid.Nil {
		return nil, appErrors.ErrInvalidToken
	}

	return claims, nil
}

// Now reads the codec clock so callers stamp times consistently with issued tokens.
func (c *Codec) Now() time.Time {
	return c.now()
}

func (c *Codec) GenerateOneTimeToken() (OneTimeToken, error) {
	buf := make([]byte, oneTimeTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return OneTimeToken{}, fmt.Errorf("read random bytes: %w", err)
	}

	plain := hex.EncodeToString(buf)
	return OneTimeToken{
		Plain:     plain,
		Hash:      HashOneTimeToken(plain),
		ExpiresAt: c.now().Add(OneTimeTokenTTL),
	}, nil
}

// HashOneTimeToken returns the SHA-256 hex digest stored server-side.
func HashOneTimeToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// VerifyOneTimeToken re-hashes plain and checks it against the stored hash and expiry.
func (c *Codec) VerifyOneTimeToken(plain, storedHash string, expiresAt *time.Time) bool {
	if storedHash == "" || expiresAt == nil || !c.now().Before(*expiresAt) {
		return false
	}
	got := HashOneTimeToken(plain)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}
