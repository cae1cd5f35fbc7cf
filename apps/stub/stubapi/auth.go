package stubapi

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/ratiba/core"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	contextTokenKey = "studentToken"
)

var (
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountExists        = echo.NewHTTPError(http.StatusConflict, "an account with this username or email already exists")
	errRefreshInvalid       = echo.NewHTTPError(http.StatusForbidden, "invalid or expired refresh token")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`
}

func (s *server) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    s.opts.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (s *server) studentClaims(stu *student, refresh bool) *Claims {
	now := time.Now()
	ttl := accessTokenTTL
	if refresh {
		ttl = refreshTokenTTL
	}
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    "ratiba-stub",
			Subject:   stu.username,
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: stu.username,
		Email:    stu.email,
		Refresh:  refresh,
	}
}

// session mints an access + refresh token pair for a student.
func (s *server) session(stu *student) (core.Session, error) {
	access, err := s.generateToken(s.studentClaims(stu, false))
	if err != nil {
		return core.Session{}, err
	}
	refresh, err := s.generateToken(s.studentClaims(stu, true))
	if err != nil {
		return core.Session{}, err
	}
	return core.Session{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *server) generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	return token.SignedString(s.opts.SecretKey)
}

func (s *server) authenticate(identifier, password string) (*student, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stu := s.store.findByUsernameOrEmail(identifier)
	if stu == nil {
		return nil, errAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(stu.passwordHash, []byte(password)); err != nil {
		return nil, errAuthenticationFailed
	}
	return stu, nil
}

// parseRefreshToken validates a refresh token and resolves its student.
func (s *server) parseRefreshToken(raw string) (*student, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.opts.SecretKey, nil
	})
	if err != nil || !token.Valid || !claims.Refresh {
		return nil, errRefreshInvalid
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	stu, ok := s.store.students[claims.Subject]
	if !ok {
		return nil, errRefreshInvalid
	}
	return stu, nil
}

// contextStudent resolves the authenticated student from the JWT middleware.
func (s *server) contextStudent(ctx echo.Context) (*student, error) {
	token, ok := ctx.Get(contextTokenKey).(*jwt.Token)
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Refresh {
		return nil, echo.ErrUnauthorized
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	stu, ok := s.store.students[claims.Subject]
	if !ok {
		return nil, echo.ErrUnauthorized
	}
	return stu, nil
}
