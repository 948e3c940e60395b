package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bank-reconciliation-service/internal/models"
)

var (
	ErrNoSecret       = errors.New("jwt secret is not configured")
	ErrMissingSubject = errors.New("token has no subject")
	ErrMissingCompany = errors.New("token has no company_id claim")
)

// Claims are the token claims this service issues and accepts. The subject is
// the user id.
type Claims struct {
	CompanyID string `json:"company_id"`
	jwt.RegisteredClaims
}

// Caller converts validated claims into the identity passed to services.
func (c *Claims) Caller() models.Caller {
	return models.Caller{UserID: c.Subject, CompanyID: c.CompanyID}
}

// GenerateToken signs an HS256 token for userID acting within companyID.
func GenerateToken(secret, issuer, userID, companyID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		CompanyID: companyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature, expiry and, when issuer is set, the
// issuer of tokenString. A token must name both a user and a company.
func ParseToken(secret, issuer, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	if claims.CompanyID == "" {
		return nil, ErrMissingCompany
	}
	return claims, nil
}
