package security

import (
	"ManadaBook/internal/api/config"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken 验证 Token 字符串并解析出 Claims
// Token 由外部身份服务签发，这里只做校验
func ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Cfg.JWT.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token invalid or expired")
	}

	return claims, nil
}
