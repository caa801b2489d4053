package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(userID string, employeeID string, role auth.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expiration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	return &JWTService{
		accessTokenExpiration: expiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

// GenerateAccessToken issues a token carrying the employee and role claims the API authorizes on.
func (j *JWTService) GenerateAccessToken(userID string, employeeID string, role auth.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        string(role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}
