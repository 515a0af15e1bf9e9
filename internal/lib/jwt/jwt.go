package jwt

import (
	"time"

	"photo_commerce/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewOperatorToken mints the bearer token operators present on the admin
// surface. Claims carry the operator's id for the admin check.
func NewOperatorToken(user models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID.String()
	claims["email"] = user.Email
	claims["exp"] = time.Now().Add(duration).Unix()

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
