package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-match/internal/dto"
	"quiz-match/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestShopAuth(t *testing.T) {
	valid, err := middleware.IssueShopToken(testSecret, "shop-1", time.Hour)
	require.NoError(t, err)
	expired, err := middleware.IssueShopToken(testSecret, "shop-1", -time.Minute)
	require.NoError(t, err)
	otherSecret, err := middleware.IssueShopToken("another-secret", "shop-1", time.Hour)
	require.NoError(t, err)
	noShop, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "shop-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedShopID string
		expectedError  string
	}{
		{name: "Valid Token", authHeader: "Bearer " + valid, expectedStatus: fiber.StatusOK, expectedShopID: "shop-1"},
		{name: "No Auth Header", expectedStatus: fiber.StatusUnauthorized, expectedError: "Authorization header is missing"},
		{name: "Malformed Auth Header - No Bearer", authHeader: "Basic abc", expectedStatus: fiber.StatusUnauthorized, expectedError: "Authorization scheme is not Bearer"},
		{name: "Empty Token", authHeader: "Bearer ", expectedStatus: fiber.StatusUnauthorized, expectedError: "Token is empty"},
		{name: "Bare Scheme", authHeader: "Bearer", expectedStatus: fiber.StatusUnauthorized, expectedError: "Token is empty"},
		{name: "Scheme Without Separator", authHeader: "Bearer" + valid, expectedStatus: fiber.StatusUnauthorized, expectedError: "Authorization scheme is not Bearer"},
		{name: "Lowercase Scheme", authHeader: "bearer " + valid, expectedStatus: fiber.StatusOK, expectedShopID: "shop-1"},
		{name: "Expired Token", authHeader: "Bearer " + expired, expectedStatus: fiber.StatusUnauthorized, expectedError: "Token has expired"},
		{name: "Wrong Secret", authHeader: "Bearer " + otherSecret, expectedStatus: fiber.StatusUnauthorized, expectedError: "Invalid token"},
		{name: "Missing Shop Claim", authHeader: "Bearer " + noShop, expectedStatus: fiber.StatusUnauthorized, expectedError: "Invalid token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			var shopID string
			app.Get("/shop", middleware.ShopAuth(testSecret), func(c *fiber.Ctx) error {
				shopID = middleware.ShopID(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("GET", "/shop", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			assert.Equal(t, tc.expectedShopID, shopID)
			if tc.expectedError != "" {
				var body dto.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.False(t, body.Success)
				assert.Equal(t, "UNAUTHORIZED", body.Code)
				assert.Equal(t, tc.expectedError, body.Error)
			}
		})
	}
}

func TestParseShopToken_RejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, middleware.ShopClaims{Shop: "shop-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = middleware.ParseShopToken(testSecret, token)
	assert.Error(t, err)
}
