package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/database"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 12
	// AccessTokenExpiry is how long access tokens are valid.
	AccessTokenExpiry = 30 * time.Minute
	// RefreshTokenExpiry is how long refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims represents the claims in an issued token. Role travels in the
// token so handlers can gate writer-only routes without a user lookup.
type Claims struct {
	UserID    int    `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Service handles registration, authentication, and token lifecycle.
type Service struct {
	db        *bun.DB
	jwtSecret []byte
}

// NewService creates a new auth service.
func NewService(db *bun.DB, jwtSecret string) *Service {
	return &Service{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

// RegisterUserOptions are the fields accepted at registration.
type RegisterUserOptions struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Surname   string
	Role      string
}

// Register creates a new reader or writer account.
func (s *Service) Register(ctx context.Context, opts RegisterUserOptions) (*models.User, error) {
	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("u.username = ? COLLATE NOCASE", opts.Username).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("A user with this username already exists.")
	}

	exists, err = s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("u.email = ? COLLATE NOCASE", opts.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("A user with this email already exists.")
	}

	hashedPassword, err := HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: hashedPassword,
		FirstName:    opts.FirstName,
		LastName:     opts.LastName,
		Surname:      opts.Surname,
		Role:         opts.Role,
		IsActive:     true,
	}

	_, err = s.db.NewInsert().Model(user).Returning("*").Exec(ctx)
	if err != nil {
		// The unique indexes are the authority when two registrations race.
		if database.IsUniqueViolation(err) {
			return nil, errcodes.ValidationError("A user with this username or email already exists.")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user if valid.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.username = ? COLLATE NOCASE", username).
		Where("u.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid username or password")
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid username or password")
	}

	return user, nil
}

// GenerateTokenPair creates a new access/refresh pair for the user. The
// refresh token carries a jti so it can be denylisted on logout.
func (s *Service) GenerateTokenPair(user *models.User) (*TokenPair, error) {
	access, err := s.signToken(user, tokenTypeAccess, AccessTokenExpiry, "")
	if err != nil {
		return nil, err
	}

	jti, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	refresh, err := s.signToken(user, tokenTypeRefresh, RefreshTokenExpiry, jti.String())
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Service) signToken(user *models.User, tokenType string, expiry time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    user.ID,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return signedToken, nil
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

// ValidateRefreshToken validates a refresh token, including the denylist
// check, and returns its claims.
func (s *Service) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh || claims.ID == "" {
		return nil, errors.New("not a refresh token")
	}

	revoked, err := s.db.NewSelect().
		Model((*models.RevokedToken)(nil)).
		Where("rt.jti = ?", claims.ID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if revoked {
		return nil, errors.New("token has been revoked")
	}

	return claims, nil
}

// RevokeRefreshToken denylists a refresh token until its natural expiry.
// Revoking an already-revoked token is not an error.
func (s *Service) RevokeRefreshToken(ctx context.Context, claims *Claims) error {
	revoked := &models.RevokedToken{
		CreatedAt: time.Now(),
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	_, err := s.db.NewInsert().Model(revoked).Exec(ctx)
	if err != nil && !database.IsUniqueViolation(err) {
		return errors.WithStack(err)
	}
	return nil
}

// PurgeExpiredTokens removes denylist rows for tokens that have expired on
// their own. Safe to run at any time.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int, error) {
	result, err := s.db.NewDelete().
		Model((*models.RevokedToken)(nil)).
		Where("expires_at < ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// GetUserByID retrieves an active user by ID.
func (s *Service) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Where("u.is_active = ?", true).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(hashedPassword), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
