package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"storyframe-ai/config"
	"storyframe-ai/internal/response"
	apperrors "storyframe-ai/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ContextUserIdKey = "user_id"

type Claims struct {
	UserId   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 token for the user. Expiry comes from config
// (default 24h).
func GenerateToken(userId int64, username string) (string, int64, error) {
	expireHours := config.Conf.Auth.JwtExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expireSeconds := int64(expireHours) * 3600

	claims := Claims{
		UserId:   userId,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expireSeconds) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Conf.Auth.JwtSecretKey))
	if err != nil {
		return "", 0, err
	}
	return signed, expireSeconds, nil
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Conf.Auth.JwtSecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, apperrors.ErrTokenExpired
}

// Middleware 校验 Authorization: Bearer <token>，成功后将用户ID写入上下文
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, response.FromError(apperrors.ErrUnauthorized))
			c.Abort()
			return
		}

		claims, err := ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.FromError(apperrors.ErrTokenExpired))
			c.Abort()
			return
		}

		c.Set(ContextUserIdKey, claims.UserId)
		c.Next()
	}
}

// UserId returns the authenticated user id placed by Middleware.
func UserId(c *gin.Context) int64 {
	v, ok := c.Get(ContextUserIdKey)
	if !ok {
		return 0
	}
	id, _ := v.(int64)
	return id
}
