package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenUser is the identity carried by a verified bearer token.
type TokenUser struct {
	ID    string
	Email string
	Role  string
}

func CreateJWTToken(userID, email, role, jwtSecretKey string) (string, error) {
	claims := jwt.MapClaims{}
	claims["authorized"] = true
	claims["userID"] = userID
	claims["email"] = email
	claims["role"] = role
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecretKey))
}

func ParseJWTToken(tokenString, jwtSecretKey string) (TokenUser, error) {
	var user TokenUser

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecretKey), nil
	})
	if err != nil {
		return user, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return user, jwt.ErrSignatureInvalid
	}

	if id, ok := claims["userID"].(string); ok {
		user.ID = id
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}

	return user, nil
}
