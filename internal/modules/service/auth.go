package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/projectpulse-io/projectpulse/internal/config"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/repo"
	"github.com/projectpulse-io/projectpulse/internal/pkg/utils/secrets"
	"github.com/projectpulse-io/projectpulse/internal/pkg/utils/tokens"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, in LoginInput) (*AuthOutput, error)
	// Authenticate resolves a raw bearer token to its active user, or
	// ErrUnauthorized.
	Authenticate(ctx context.Context, rawToken string) (*model.User, error)
	Logout(ctx context.Context, rawToken string) error
}

type authService struct {
	users repo.UserRepo
	rdb   *redis.Client
	cfg   *config.Config
	log   *zap.Logger
}

func NewAuthService(users repo.UserRepo, rdb *redis.Client, cfg *config.Config, log *zap.Logger) AuthService {
	return &authService{users: users, rdb: rdb, cfg: cfg, log: log}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthOutput struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// session is the redis payload keyed by the token's HMAC.
type session struct {
	UserID   uuid.UUID `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

func sessionKey(lookup string) string { return "session:" + lookup }

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthOutput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var fields []string
	if in.Name == "" {
		fields = append(fields, "name is required")
	}
	if in.Email == "" {
		fields = append(fields, "email is required")
	}
	if len(in.Password) < 6 {
		fields = append(fields, "password must be at least 6 characters long")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	taken, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	phc, err := secrets.HashSecret(in.Password, s.cfg.Auth.SecretPepper)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: phc,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{User: u, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*AuthOutput, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, &ValidationError{Fields: []string{"email and password are required"}}
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}

	pass, err := secrets.VerifySecret(in.Password, s.cfg.Auth.SecretPepper, u.PasswordHash)
	if err != nil || !pass {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthOutput{User: u, Token: token}, nil
}

func (s *authService) Authenticate(ctx context.Context, rawToken string) (*model.User, error) {
	secret, ok := tokens.ParseToken(rawToken, s.cfg.Auth.TokenPrefix)
	if !ok {
		return nil, ErrUnauthorized
	}
	lookup := tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, secret)

	payload, err := s.rdb.Get(ctx, sessionKey(lookup)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess session
	if err := sonic.Unmarshal([]byte(payload), &sess); err != nil {
		return nil, ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up session user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	return u, nil
}

func (s *authService) Logout(ctx context.Context, rawToken string) error {
	secret, ok := tokens.ParseToken(rawToken, s.cfg.Auth.TokenPrefix)
	if !ok {
		return ErrUnauthorized
	}
	lookup := tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, secret)
	return s.rdb.Del(ctx, sessionKey(lookup)).Err()
}

func (s *authService) issueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	secret, err := tokens.GenerateSecret()
	if err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	lookup := tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, secret)

	payload, err := sonic.Marshal(session{UserID: userID, IssuedAt: time.Now().UTC()})
	if err != nil {
		return "", err
	}

	ttl := time.Duration(s.cfg.Auth.SessionTTLMinutes) * time.Minute
	if err := s.rdb.Set(ctx, sessionKey(lookup), payload, ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return s.cfg.Auth.TokenPrefix + secret, nil
}
