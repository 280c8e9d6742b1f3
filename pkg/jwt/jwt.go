package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/circulation/pkg/errors"
)

// 角色
const (
	RoleReader    = "reader"    // 读者：只能操作自己的预约
	RoleLibrarian = "librarian" // 馆员：借还、库存、管理预约
)

// Manager JWT管理器
// 设计说明：
// 1. 借阅人身份由外部身份系统签发，本服务只负责校验
// 2. GenerateToken 仅供开发工具（circulationctl token）和测试使用
type Manager struct {
	secret      string        // JWT签名密钥
	tokenExpire time.Duration // Token有效期
	issuer      string
}

// NewManager 创建JWT管理器
func NewManager(secret string, tokenExpire time.Duration) *Manager {
	return &Manager{
		secret:      secret,
		tokenExpire: tokenExpire,
		issuer:      "circulation",
	}
}

// Claims 自定义JWT Claims
type Claims struct {
	HolderID uint   `json:"holder_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsLibrarian 是否馆员
func (c *Claims) IsLibrarian() bool {
	return c.Role == RoleLibrarian
}

// GenerateToken 签发Token
func (m *Manager) GenerateToken(holderID uint, role string) (string, error) {
	if role != RoleReader && role != RoleLibrarian {
		return "", apperrors.New(apperrors.ErrCodeInvalidParams, fmt.Sprintf("未知角色: %s", role))
	}

	now := time.Now()
	claims := Claims{
		HolderID: holderID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpire)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", holderID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", apperrors.Wrap(err, "生成Token失败")
	}
	return signed, nil
}

// ParseToken 解析并验证Token
// 校验签名、exp、nbf；holder_id必须存在
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.HolderID == 0 {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
