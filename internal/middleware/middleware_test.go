package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/jwt"
	"github.com/lkendi/Task-Management-System/internal/repository/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func sessionRouter(t *testing.T, users UserFinder, tokens TokenVerifier) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.Use(Session(tokens, users))
	r.GET("/whoami", func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "%d:%s", actor.ID, actor.Roles[0])
	})
	return r
}

func TestSession(t *testing.T) {
	tokens := jwt.NewJWTService("secret", 1)
	valid, _, err := tokens.GenerateToken(7, "u@example.com")
	if err != nil {
		t.Fatal(err)
	}
	ghost, _, err := tokens.GenerateToken(8, "gone@example.com")
	if err != nil {
		t.Fatal(err)
	}
	forged, _, err := jwt.NewJWTService("other", 1).GenerateToken(7, "u@example.com")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		setup  func(*http.Request)
		expect func(*mocks.MockUserRepository)
		want   string
	}{
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: valid})
			},
			expect: func(m *mocks.MockUserRepository) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(&entities.User{ID: 7, Role: entities.RoleUser}, nil)
			},
			want: "7:user",
		},
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+valid)
			},
			expect: func(m *mocks.MockUserRepository) {
				m.EXPECT().FindByID(gomock.Any(), int64(7)).Return(&entities.User{ID: 7, Role: entities.RoleAdmin}, nil)
			},
			want: "7:admin",
		},
		{
			name:  "no credentials",
			setup: func(*http.Request) {},
			want:  "anonymous",
		},
		{
			name: "forged token",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})
			},
			want: "anonymous",
		},
		{
			name: "deleted user",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookie, Value: ghost})
			},
			expect: func(m *mocks.MockUserRepository) {
				m.EXPECT().FindByID(gomock.Any(), int64(8)).Return(nil, apperrors.NotFound("user"))
			},
			want: "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := mocks.NewMockUserRepository(gomock.NewController(t))
			if tt.expect != nil {
				tt.expect(users)
			}

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			sessionRouter(t, users, tokens).ServeHTTP(w, req)

			if w.Code != http.StatusOK || w.Body.String() != tt.want {
				t.Errorf("got %d %q, want %q", w.Code, w.Body.String(), tt.want)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 0.001, 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("second client got %d", w.Code)
	}
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 1)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	now = now.Add(visitorIdleTimeout + time.Second)
	rl.limiterFor("10.0.0.2")
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor kept")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("active visitor evicted")
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc" {
		t.Errorf("request id = %q, want abc", got)
	}
}
