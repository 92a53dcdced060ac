package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultVerificationValidity is how long an email confirmation link stays usable.
const DefaultVerificationValidity = time.Hour

const verificationPurpose = "email-verify"

// ErrInvalidVerification covers every confirmation failure. Expired and
// malformed tokens are deliberately indistinguishable to the caller.
var ErrInvalidVerification = errors.New("verification link is invalid or has expired")

type verificationClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// VerificationTokenService issues and confirms signed, time-limited email
// verification tokens.
type VerificationTokenService struct {
	secret   []byte
	validity time.Duration
}

func NewVerificationTokenService(secret string, validity time.Duration) *VerificationTokenService {
	if validity <= 0 {
		validity = DefaultVerificationValidity
	}
	return &VerificationTokenService{
		secret:   []byte(secret),
		validity: validity,
	}
}

// Generate issues a token bound to the given email address.
func (s *VerificationTokenService) Generate(email string) (string, error) {
	now := time.Now()
	claims := verificationClaims{
		Email:   email,
		Purpose: verificationPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "flowboard",
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Confirm validates a token and returns the email it was issued for.
func (s *VerificationTokenService) Confirm(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &verificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidVerification
		}
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidVerification
	}

	claims, ok := token.Claims.(*verificationClaims)
	if !ok || !token.Valid || claims.Purpose != verificationPurpose || claims.Email == "" {
		return "", ErrInvalidVerification
	}

	return claims.Email, nil
}
