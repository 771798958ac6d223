// Package jwt 封装 Access Token 的解析与签发
// 线上 Token 由账号中心签发，本服务只负责校验；签发方法供测试和运维工具使用
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer         = "class_chat"
	subjectAccess  = "access_token"
	defaultExpires = 15 * time.Minute
)

// ErrNotInitialized 在调用 Init 之前解析 Token 时返回
var ErrNotInitialized = errors.New("jwt not initialized")

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration // Access Token 有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig *JWTConfig

// Init 初始化 JWT 配置
func Init(secret string, accessExpiryMinutes int) {
	expiry := time.Duration(accessExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = defaultExpires
	}
	jwtConfig = &JWTConfig{
		Secret:            secret,
		AccessTokenExpiry: expiry,
	}
}

// Claims 自定义 JWT 声明
// Token 中携带 {身份, 角色}
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAccessToken 判断是否为 Access Token
func (c *Claims) IsAccessToken() bool {
	return c.Subject == subjectAccess
}

// GenerateAccessToken 生成 Access Token
func GenerateAccessToken(userID, role string) (string, error) {
	return generate(userID, role, jwtConfig.AccessTokenExpiry)
}

// GenerateExpiredToken 生成一个已经过期的 Access Token，仅用于测试过期分支
func GenerateExpiredToken(userID, role string) (string, error) {
	return generate(userID, role, -time.Minute)
}

func generate(userID, role string, ttl time.Duration) (string, error) {
	if jwtConfig == nil {
		return "", ErrNotInitialized
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subjectAccess,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.Secret))
}

// ParseToken 解析并验证 Token（签名、过期时间、签名算法）
func ParseToken(tokenString string) (*Claims, error) {
	if jwtConfig == nil {
		return nil, ErrNotInitialized
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
