package jwt

import (
	"time"

	"lensdrop/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// NewToken issues an HS256 token carrying the photographer identity.
func NewToken(user models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID.String()
	claims["email"] = user.Email
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString([]byte(secret))
}
