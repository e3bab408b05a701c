// Package token реализует выпуск и проверку подписанных токенов
// подтверждения электронной почты на основе JWT (HS256).
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает данные, хранящиеся в токене подтверждения.
type Claims struct {
	UserUID              string `json:"user_uid"` // Идентификатор пользователя
	Email                string `json:"email"`    // Подтверждаемый адрес
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker выпускает и разбирает токены подтверждения.
type Maker struct {
	secretKey string        // Секретный ключ для подписи токенов
	tokenTTL  time.Duration // Время жизни токена
}

// NewMaker создаёт новый Maker на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *Maker {
	return &Maker{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// Generate создает токен подтверждения для пары пользователь/адрес,
// подписывая его секретным ключом.
func (m *Maker) Generate(userUID, email string) (string, error) {
	claims := Claims{
		UserUID: userUID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Parse проверяет подпись и срок действия токена и возвращает его claims.
func (m *Maker) Parse(tokenStr string) (*Claims, error) {
	const op = "token.Parse"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
