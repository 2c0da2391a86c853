package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/surat-menyurat/internal/application/port"
	"github.com/garyjia/surat-menyurat/internal/domain/apperr"
	"github.com/garyjia/surat-menyurat/internal/domain/entity"
	"github.com/garyjia/surat-menyurat/pkg/utils"
)

const tokenSource = "password"

// AuthConfig holds token and built-in admin settings
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// Claims is the JWT payload issued on login
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Source string `json:"source"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	Token string       `json:"token"`
	User  entity.Actor `json:"user"`
}

// AuthService authenticates users and issues bearer tokens
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Register creates a pending viewer account awaiting admin approval.
	Register(ctx context.Context, input RegisterInput) (*entity.User, error)
	IssueToken(actor entity.Actor) (string, error)
	VerifyToken(token string) (entity.Actor, error)
	// Authenticate resolves a bearer token: an external ID token when a
	// verifier is configured, otherwise or failing that a password JWT.
	Authenticate(ctx context.Context, token string) (entity.Actor, error)
}

type authServiceImpl struct {
	users    port.UserRepository
	hasher   port.PasswordHasher
	idTokens port.IDTokenVerifier
	cfg      AuthConfig
	logger   Logger
	now      func() time.Time
}

// AuthOption configures optional auth service collaborators
type AuthOption func(*authServiceImpl)

// WithIDTokenVerifier accepts external ID tokens for registered users.
func WithIDTokenVerifier(v port.IDTokenVerifier) AuthOption {
	return func(s *authServiceImpl) {
		s.idTokens = v
	}
}

// NewAuthService creates a new AuthService
func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, cfg AuthConfig, logger Logger, opts ...AuthOption) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	s := &authServiceImpl{
		users:  users,
		hasher: hasher,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	normalized := entity.NormalizeEmail(email)

	if s.cfg.AdminEmail != "" && s.cfg.AdminPassword != "" &&
		normalized == entity.NormalizeEmail(s.cfg.AdminEmail) && password == s.cfg.AdminPassword {
		admin := entity.Actor{ID: entity.AdminAccountID, Email: s.cfg.AdminEmail, Name: "Admin", Role: entity.RoleAdmin}
		return s.loginResult(admin)
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, apperr.Unauthenticatedf("Invalid credentials")
	}
	if !user.IsActive() {
		if user.Status == entity.UserStatusPending {
			return nil, apperr.Forbiddenf("Akun menunggu persetujuan admin. Silakan coba lagi setelah disetujui.")
		}
		return nil, apperr.Forbiddenf("Akun tidak dapat masuk.")
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, apperr.Unauthenticatedf("Invalid credentials")
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.loginResult(entity.Actor{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role})
}

func (s *authServiceImpl) loginResult(actor entity.Actor) (*LoginResult, error) {
	token, err := s.IssueToken(actor)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: actor}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	name := utils.SanitizeString(strings.TrimSpace(input.Name))
	email := entity.NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperr.Validationf("Name, email and password are required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, apperr.Validationf("Format email tidak valid")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflictf("Email already registered")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		ID:           fmt.Sprintf("u%d", s.now().UnixMilli()),
		Name:         name,
		Email:        email,
		Role:         entity.RoleViewer,
		Status:       entity.UserStatusPending,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (s *authServiceImpl) IssueToken(actor entity.Actor) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: actor.ID,
		Email:  actor.Email,
		Name:   actor.Name,
		Role:   actor.Role,
		Source: tokenSource,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authServiceImpl) VerifyToken(token string) (entity.Actor, error) {
	claims := &Claims{}
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Source != tokenSource || claims.UserID == "" {
		return entity.Actor{}, &apperr.Error{Kind: apperr.ErrUnauthenticated, Message: "Invalid or expired token"}
	}
	role := claims.Role
	if role == "" {
		role = entity.RoleViewer
	}
	return entity.Actor{ID: claims.UserID, Email: claims.Email, Name: claims.Name, Role: role}, nil
}

func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (entity.Actor, error) {
	if s.idTokens != nil {
		identity, err := s.idTokens.Verify(ctx, token)
		if err == nil {
			return s.externalActor(ctx, identity)
		}
	}
	return s.VerifyToken(token)
}

// externalActor maps a verified identity onto the registered account with
// the same email. Unknown or unverified emails are rejected; the account
// status rules of Login apply.
func (s *authServiceImpl) externalActor(ctx context.Context, identity *port.ExternalIdentity) (entity.Actor, error) {
	email := entity.NormalizeEmail(identity.Email)
	if email == "" || !identity.EmailVerified {
		return entity.Actor{}, apperr.Unauthenticatedf("Invalid or expired token")
	}
	if s.cfg.AdminEmail != "" && email == entity.NormalizeEmail(s.cfg.AdminEmail) {
		return entity.Actor{ID: entity.AdminAccountID, Email: s.cfg.AdminEmail, Name: "Admin", Role: entity.RoleAdmin}, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return entity.Actor{}, err
	}
	if user == nil {
		s.logger.Info("Rejected unregistered external identity", "subject", identity.Subject)
		return entity.Actor{}, apperr.Unauthenticatedf("Akun belum terdaftar")
	}
	if !user.IsActive() {
		return entity.Actor{}, apperr.Forbiddenf("Akun tidak dapat masuk.")
	}
	role := user.Role
	if role == "" {
		role = entity.RoleViewer
	}
	return entity.Actor{ID: user.ID, Email: user.Email, Name: user.Name, Role: role}, nil
}
