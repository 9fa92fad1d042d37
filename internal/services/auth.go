package services

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/brandlight/ims-backend/internal/data/repos"
	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
	"github.com/brandlight/ims-backend/internal/pkg/dbctx"
	"github.com/brandlight/ims-backend/internal/pkg/logger"
	"github.com/brandlight/ims-backend/internal/requestdata"
)

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthTokens is the login/refresh response pair. The access token is a short
// lived JWT; the refresh token is an opaque value stored server side.
type AuthTokens struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         *types.User `json:"user"`
}

type accessClaims struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(dbc dbctx.Context, in RegisterInput) (*AuthTokens, error)
	Login(dbc dbctx.Context, in LoginInput) (*AuthTokens, error)
	Refresh(dbc dbctx.Context, refreshToken string) (*AuthTokens, error)
	Logout(dbc dbctx.Context, userID uuid.UUID) error
	ParseAccessToken(tokenString string) (*requestdata.RequestData, error)
}

type authService struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	tokens     repos.UserTokenRepo
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	users repos.UserRepo,
	tokens repos.UserTokenRepo,
	secret string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:         db,
		log:        baseLog.With("service", "AuthService"),
		users:      users,
		tokens:     tokens,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func validRole(role string) bool {
	switch role {
	case types.RoleContributor, types.RoleReviewer, types.RoleHOD, types.RoleBrandManager, types.RoleAdmin:
		return true
	}
	return false
}

func (s *authService) Register(dbc dbctx.Context, in RegisterInput) (*AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.Validation("invalid email address")
	}
	if len(in.Password) < 8 {
		return nil, apierr.Validation("password must be at least 8 characters")
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = types.RoleContributor
	}
	if !validRole(role) {
		return nil, apierr.Validation("unknown role %q", role)
	}

	existing, err := s.users.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(existing) > 0 {
		return nil, apierr.Validation("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
		FullName:  strings.TrimSpace(firstName + " " + lastName),
		Role:      role,
	}
	if _, err := s.users.Create(dbc, []*types.User{user}); err != nil {
		return nil, apierr.Internal(err)
	}
	s.log.Info("user registered", "user_id", user.ID.String(), "role", role)
	return s.issueTokens(dbc, user)
}

func (s *authService) Login(dbc dbctx.Context, in LoginInput) (*AuthTokens, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	users, err := s.users.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(users) == 0 {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_credentials", nil)
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_credentials", nil)
	}
	return s.issueTokens(dbc, user)
}

func (s *authService) Refresh(dbc dbctx.Context, refreshToken string) (*AuthTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.Validation("missing refresh token")
	}
	row, err := s.tokens.GetByRefreshToken(dbc, refreshToken)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if row == nil || row.ExpiresAt.Before(time.Now().UTC()) {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_refresh_token", nil)
	}
	user, err := s.users.GetByID(dbc, row.UserID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if user == nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_refresh_token", nil)
	}
	// Rotate: the old refresh token dies with the new issue.
	if err := s.tokens.DeleteByUserID(dbc, user.ID); err != nil {
		return nil, apierr.Internal(err)
	}
	return s.issueTokens(dbc, user)
}

func (s *authService) Logout(dbc dbctx.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return apierr.Validation("missing user id")
	}
	if err := s.tokens.DeleteByUserID(dbc, userID); err != nil {
		return apierr.Internal(err)
	}
	return nil
}

func (s *authService) issueTokens(dbc dbctx.Context, user *types.User) (*AuthTokens, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.accessTTL)

	claims := accessClaims{
		Role:     user.Role,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, apierr.Internal(err)
	}
	refresh := hex.EncodeToString(buf)
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.refreshTTL),
	}
	if _, err := s.tokens.Create(dbc, []*types.UserToken{row}); err != nil {
		return nil, apierr.Internal(err)
	}

	return &AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

func (s *authService) ParseAccessToken(tokenString string) (*requestdata.RequestData, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, apierr.New(http.StatusUnauthorized, "missing_token", nil)
	}
	var claims accessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_token", err)
	}
	return &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
		FullName:    claims.FullName,
	}, nil
}
