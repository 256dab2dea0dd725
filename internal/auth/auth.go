package auth

import (
	"context"
	"errors"
	"time"

	"github.com/devconnect/backend/internal/db"
	"github.com/devconnect/backend/internal/gravatar"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenTTL is the lifetime of an issued token.
	TokenTTL = 10 * time.Hour
	// BcryptCost is the bcrypt work factor for password hashes.
	BcryptCost = 10
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

// TokenUser is the identity embedded in a token.
type TokenUser struct {
	ID string `json:"id"`
}

// Claims is the JWT payload: the user identity plus registered claims.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*db.User, error)
}

type Service struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration

	// dummyHash is compared against when login hits an unknown email, so
	// both failure paths cost a bcrypt comparison.
	dummyHash []byte
}

func NewService(users UserStore, jwtSecret string) *Service {
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("credential-padding"), BcryptCost)
	if err != nil {
		// bcrypt only fails on an out-of-range cost; BcryptCost is fixed.
		panic(err)
	}

	return &Service{
		users:     users,
		secret:    []byte(jwtSecret),
		tokenTTL:  TokenTTL,
		dummyHash: dummyHash,
	}
}

// HashPassword hashes a plaintext password with a random per-call salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash. Malformed
// stored hashes count as a mismatch, not an error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a user and returns a token for it. A duplicate email
// surfaces as db.ErrEmailExists from the store's unique index, which also
// settles concurrent registrations of the same email.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, *db.User, error) {
	passwordHash, err := HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	user := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Avatar:       gravatar.URL(email),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login authenticates an email/password pair and returns a token. Unknown
// email and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			CheckPassword(password, string(s.dummyHash))
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.IssueToken(user.ID)
}

// IssueToken signs a token embedding the user identity, expiring after the
// service's TTL.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		User: TokenUser{ID: userID.String()},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates a token's signature and expiry and returns the
// embedded user id.
func (s *Service) VerifyToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.User.ID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return userID, nil
}

// GetUserByID resolves a user id to its record.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	return s.users.GetByID(ctx, id)
}
