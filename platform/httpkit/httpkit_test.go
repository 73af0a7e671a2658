package httpkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func accessClaims(userID, agencyID uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":       userID.String(),
		"tenant_id": agencyID.String(),
		"type":      "access",
		"roles":     []string{"agent"},
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
}

func protectedEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/me", AuthRequired(&config.Config{JWTAccessSecret: testSecret}), func(c *gin.Context) {
		id, ok := MustGetIdentity(c)
		if !ok {
			return
		}
		OK(c, gin.H{"user": id.UserID, "agency": id.AgencyID, "agent": id.HasRole("agent")})
	})
	return engine
}

func get(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredExposesAgencyIdentity(t *testing.T) {
	userID, agencyID := uuid.New(), uuid.New()
	rec := get(protectedEngine(), signToken(t, testSecret, accessClaims(userID, agencyID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		User   uuid.UUID `json:"user"`
		Agency uuid.UUID `json:"agency"`
		Agent  bool      `json:"agent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User != userID || body.Agency != agencyID || !body.Agent {
		t.Fatalf("unexpected identity %+v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestAuthRequiredRejections(t *testing.T) {
	userID, agencyID := uuid.New(), uuid.New()

	noTenant := accessClaims(userID, agencyID)
	delete(noTenant, "tenant_id")
	refresh := accessClaims(userID, agencyID)
	refresh["type"] = "refresh"
	expired := accessClaims(userID, agencyID)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "other", accessClaims(userID, agencyID)), http.StatusUnauthorized},
		{"refresh token", signToken(t, testSecret, refresh), http.StatusUnauthorized},
		{"expired", signToken(t, testSecret, expired), http.StatusUnauthorized},
		{"no agency", signToken(t, testSecret, noTenant), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := get(protectedEngine(), tc.token); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestAgencyRateLimiter(t *testing.T) {
	limiter := NewAgencyRateLimiter(rate.Limit(0.001), 2, nil)
	engine := gin.New()
	engine.GET("/x", func(c *gin.Context) {
		c.Set(ContextTenantIDKey, uuid.MustParse(c.Query("agency")))
		c.Next()
	}, limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	a, b := uuid.NewString(), uuid.NewString()
	codes := make([]int, 0, 4)
	for _, agency := range []string{a, a, a, b} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x?agency="+agency, nil))
		codes = append(codes, rec.Code)
	}
	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent}
	if fmt.Sprint(codes) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, codes)
	}
}

func TestHandleErrorCarriesKindAndSuggestions(t *testing.T) {
	engine := gin.New()
	engine.GET("/x", func(c *gin.Context) {
		err := apperr.Ambiguous("several contacts match", []string{"Jean Dupont", "Marie Dupont"})
		HandleError(c, fmt.Errorf("resolve: %w", err))
	})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Kind != "ambiguous" || len(body.Suggestions) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}
