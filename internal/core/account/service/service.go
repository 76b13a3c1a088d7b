package accountapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"webcourse/internal/config"
	accountEntity "webcourse/internal/core/account"
	accountPort "webcourse/internal/ports/account"
)

const issuer = "webcourse"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password is empty")
)

// AccountService handles login identities and their session tokens
type AccountService struct {
	AccountRepository accountPort.AccountRepository
	jwtKey            []byte
	ttl               time.Duration
	now               func() time.Time
}

func NewAccountService(repo accountPort.AccountRepository, jwtKey []byte, ttl time.Duration) *AccountService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AccountService{
		AccountRepository: repo,
		jwtKey:            jwtKey,
		ttl:               ttl,
		now:               time.Now,
	}
}

// Register stores a new account with a bcrypt hash of password.
func (s *AccountService) Register(ctx context.Context, username, password string, staff bool) (*accountEntity.Account, error) {
	username = strings.TrimSpace(username)
	if password == "" {
		return nil, ErrWeakPassword
	}
	if _, err := s.AccountRepository.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, accountPort.ErrNotFound) {
		return nil, fmt.Errorf("check account: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a, err := s.AccountRepository.Create(ctx, &accountEntity.Account{
		Username:     username,
		PasswordHash: string(hashed),
		IsStaff:      staff,
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// EnsureAccount registers username unless it already exists.
func (s *AccountService) EnsureAccount(ctx context.Context, username, password string, staff bool) error {
	_, err := s.Register(ctx, username, password, staff)
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	if err == nil {
		config.Logger.Info("Account bootstrapped", zap.String("username", username), zap.Bool("staff", staff))
	}
	return err
}

// Login checks the password and issues a signed session token.
func (s *AccountService) Login(ctx context.Context, username, password string) (*accountPort.Session, error) {
	a, err := s.AccountRepository.FindByUsername(ctx, username)
	if err != nil {
		config.Logger.Debug("Login for unknown account", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		config.Logger.Debug("Login with wrong password", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	expires := s.now().Add(s.ttl)
	token, err := s.generateJWT(a, expires)
	if err != nil {
		return nil, fmt.Errorf("could not generate token: %w", err)
	}
	return &accountPort.Session{Token: token, ExpiresAt: expires}, nil
}

func (s *AccountService) generateJWT(a *accountEntity.Account, expires time.Time) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	claims := &jwt.StandardClaims{
		Id:        id.String(),
		Subject:   a.Username,
		Issuer:    issuer,
		IssuedAt:  s.now().Unix(),
		ExpiresAt: expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtKey)
}

// Authenticate resolves a session token to its account.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*accountEntity.Account, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil || !parsed.Valid || claims.Issuer != issuer {
		return nil, ErrInvalidToken
	}

	a, err := s.AccountRepository.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return a, nil
}
