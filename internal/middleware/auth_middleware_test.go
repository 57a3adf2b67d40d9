package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chat-server/pkg/config"
	"go-chat-server/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupAuthTest(t *testing.T) string {
	if err := config.InitTest(); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
	pair, err := utils.GenerateTokenPair(42, "tester")
	if err != nil {
		t.Fatalf("Failed to generate token pair: %v", err)
	}
	return pair.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	token := setupAuthTest(t)
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		setupAuth  func(*http.Request)
		wantStatus int
	}{
		{
			name: "Valid token",
			setupAuth: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing auth header",
			setupAuth:  func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Invalid auth format",
			setupAuth: func(r *http.Request) {
				r.Header.Set("Authorization", "Token "+token)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Invalid token",
			setupAuth: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer invalid.token.here")
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AuthMiddleware())
			r.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"user_id":  CurrentUserID(c),
					"username": c.GetString(ContextUsername),
				})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/test", nil)
			tt.setupAuth(req)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":42`)
				assert.Contains(t, w.Body.String(), "tester")
			} else {
				// Domain error contract: numeric code plus message.
				assert.Contains(t, w.Body.String(), `"code":111`)
			}
		})
	}
}

func TestLocale(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"uz", "uz"},
		{"uz-UZ,uz;q=0.9,en;q=0.8", "uz"},
		{"EN-us", "en"},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			c.Request.Header.Set("Accept-Language", tt.header)
		}
		assert.Equal(t, tt.want, Locale(c))
	}
}
