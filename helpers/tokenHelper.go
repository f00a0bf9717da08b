package helpers

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type SignedDetails struct {
	Email     string
	Name      string
	Uid       string
	User_role string
	jwt.StandardClaims
}

// TokenTTL is how long an issued staff token stays valid.
const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("the token is invalid")

// TokenIssuer signs and validates staff tokens with one HMAC secret.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

func (ti *TokenIssuer) GenerateToken(email, name, uid, userRole string) (string, error) {
	claim := SignedDetails{
		Email:     email,
		Name:      name,
		Uid:       uid,
		User_role: userRole,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  ti.now().Unix(),
			ExpiresAt: ti.now().Add(TokenTTL).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString(ti.secret)
}

func (ti *TokenIssuer) ValidateToken(signedToken string) (*SignedDetails, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return ti.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt < ti.now().Unix() {
		return nil, errors.New("token is expired")
	}
	return claims, nil
}
