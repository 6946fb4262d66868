package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workhive/utils"

	"github.com/gin-gonic/gin"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", JWTAuthMiddleware(), func(c *gin.Context) {
		c.String(http.StatusOK, CallerID(c))
	})
	return r
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	r := authTestRouter()

	token, err := utils.GenerateToken("user-42", "user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "user-42" {
		t.Errorf("expected caller id user-42, got %q", w.Body.String())
	}
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	r := authTestRouter()

	token, err := utils.GenerateToken("user-42", "user@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("got %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	r := authTestRouter()

	for _, header := range []string{"", "Bearer ", "Basic abc", "garbage"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: got %d, want %d", header, w.Code, http.StatusUnauthorized)
		}
	}
}
