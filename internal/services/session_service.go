package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/models"
)

// SessionClaims is what a valid session token carries.
type SessionClaims struct {
	UserID   uuid.UUID
	Username string
	Expires  time.Time
}

// SessionService issues and parses the signed session token stored in the
// browser cookie.
type SessionService interface {
	Issue(user *models.User) (string, error)
	// Parse returns jwt.ErrTokenExpired for expired tokens.
	Parse(token string) (*SessionClaims, error)
	TTL() time.Duration
}

type sessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionService(secret string, ttl time.Duration) (SessionService, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &sessionService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *sessionService) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"iss": constants.TokenIssuer,
		"sub": user.ID.String(),
		"usr": user.Username,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *sessionService) TTL() time.Duration { return s.ttl }

func (s *sessionService) Parse(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(constants.TokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid session subject: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("session token has no expiry")
	}
	username, _ := claims["usr"].(string)
	return &SessionClaims{UserID: uid, Username: username, Expires: exp.Time}, nil
}
