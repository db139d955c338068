package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer"
	ShopIDKey           = "shop_id" // Key for storing the shop id in fiber.Ctx locals
)

// ShopClaims identifies the merchant a token was issued to.
type ShopClaims struct {
	Shop string `json:"shop"`
	jwt.RegisteredClaims
}

// IssueShopToken signs an HS256 token for shopID.
func IssueShopToken(secret, shopID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ShopClaims{
		Shop: shopID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   shopID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseShopToken validates signature and expiry and returns the claims.
func ParseShopToken(secret, tokenString string) (*ShopClaims, error) {
	claims := &ShopClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Shop == "" {
		return nil, errors.New("token has no shop claim")
	}
	return claims, nil
}

// ShopAuth requires a valid shop token and stores the shop id under ShopIDKey.
func ShopAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return domain.NewUnauthorizedError("Authorization header is missing")
		}
		// Header values arrive trimmed, so a bare "Bearer" still names the scheme.
		scheme, tokenString, _ := strings.Cut(strings.TrimSpace(authHeader), " ")
		if !strings.EqualFold(scheme, BearerSchema) {
			return domain.NewUnauthorizedError("Authorization scheme is not Bearer")
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			return domain.NewUnauthorizedError("Token is empty")
		}

		claims, err := ParseShopToken(secret, tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				logger.Get().Debug("ShopAuth: token expired", zap.String("path", c.Path()))
				return domain.NewUnauthorizedError("Token has expired")
			}
			logger.Get().Debug("ShopAuth: token rejected", zap.String("path", c.Path()), zap.Error(err))
			return domain.NewUnauthorizedError("Invalid token")
		}

		c.Locals(ShopIDKey, claims.Shop)
		return c.Next()
	}
}

// ShopID returns the authenticated shop id, or "" outside ShopAuth.
func ShopID(c *fiber.Ctx) string {
	shopID, _ := c.Locals(ShopIDKey).(string)
	return shopID
}
