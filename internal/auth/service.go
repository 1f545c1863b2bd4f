package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/evaluation-criteria/internal"
	"github.com/golang-jwt/jwt/v5"
)

type ServiceAPI interface {
	ValidateAccessToken(tokenString string) (*Claims, error)
	Authenticate(tokenString string) (*internal.Principal, error)
}

type Service struct {
	validator TokenValidator
	logger    *slog.Logger
}

func NewService(validator TokenValidator, logger *slog.Logger) *Service {
	return &Service{
		validator: validator,
		logger:    logger,
	}
}

// NewJWTValidator creates an HS256 validator. An empty issuer disables the
// issuer check.
func NewJWTValidator(secret, issuer string) *JWTValidator {
	return &JWTValidator{
		Secret: []byte(secret),
		Issuer: issuer,
	}
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validator.ValidateToken(tokenString)
}

// Authenticate turns a bearer token into the caller principal.
func (s *Service) Authenticate(tokenString string) (*internal.Principal, error) {
	claims, err := s.validator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		s.logger.Warn("token without subject rejected")
		return nil, ErrInvalidToken
	}

	return &internal.Principal{
		ID:          id,
		Email:       claims.Email,
		Permissions: claims.Permissions,
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTValidator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
