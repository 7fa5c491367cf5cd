package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type AuthConfig struct {
	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int
}

type adminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	adminRepo  ports.AdminRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(adminRepo ports.AdminRepository, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		adminRepo:  adminRepo,
		jwtSecret:  cfg.JWTSecret,
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
		now:        time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateAccessToken(admin)
}

func (s *AuthService) Authenticate(token string) (int64, error) {
	claims := &adminClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}

	adminID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || adminID <= 0 {
		return 0, domain.ErrInvalidToken
	}
	return adminID, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) error {
	if err := domain.CheckPassword(newPassword); err != nil {
		return err
	}

	admin, err := s.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(currentPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.adminRepo.UpdatePasswordHash(ctx, adminID, hash)
}

func (s *AuthService) GetAdmin(ctx context.Context, id int64) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrAdminNotFound
	}
	return admin, nil
}

// EnsureAdmin creates the bootstrap admin when it does not exist yet. Empty
// credentials disable bootstrapping.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	if err := domain.CheckPassword(password); err != nil {
		return err
	}

	existing, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to get admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}

	err = s.adminRepo.Create(ctx, &domain.Admin{Username: username, PasswordHash: hash})
	if errors.Is(err, domain.ErrAdminExists) {
		return nil
	}
	return err
}

func (s *AuthService) generateAccessToken(admin *domain.Admin) (*domain.AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)

	claims := adminClaims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(admin.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &domain.AccessToken{Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
