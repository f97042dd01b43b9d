package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/controllers"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/jwt"
)

type noSessions struct{}

func (noSessions) ValidateToken(string) (*jwt.Claims, error) { return nil, jwt.ErrInvalidToken }

func (noSessions) FindByID(context.Context, int64) (*entities.User, error) { return nil, nil }

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	gate := controllers.Gate{LoginPath: "/login"}
	return New(Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		Tokens:         noSessions{},
		Users:          noSessions{},
	}, Handlers{
		Auth:       controllers.NewAuthController(nil, nil, gate, false),
		Users:      controllers.NewUserController(nil, gate),
		Projects:   controllers.NewProjectController(nil, gate),
		Tasks:      controllers.NewTaskController(nil, gate),
		QRCodes:    controllers.NewQRCodeController(nil, gate, "http://localhost:8080"),
		Dashboards: controllers.NewDashboardController(nil, gate),
		DB:         okPinger{},
	})
}

func TestRoutesRegistered(t *testing.T) {
	registered := map[string]bool{}
	for _, r := range newTestEngine().Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /login", "POST /login", "POST /logout", "GET /me",
		"GET /users", "POST /users", "GET /users/:id", "PUT /users/:id", "DELETE /users/:id",
		"GET /projects", "POST /projects", "GET /projects/:id", "PUT /projects/:id", "DELETE /projects/:id",
		"GET /tasks", "POST /tasks", "GET /tasks/:id", "PATCH /tasks/:id", "DELETE /tasks/:id",
		"GET /tasks/:id/qrcode",
		"GET /my-tasks", "PATCH /my-tasks/:id",
		"GET /dashboard", "GET /my-dashboard",
	} {
		if !registered[want] {
			t.Errorf("route %q not registered", want)
		}
	}
}

func TestAnonymousRequestsRedirectToLogin(t *testing.T) {
	engine := newTestEngine()
	for _, path := range []string{"/users", "/projects", "/tasks", "/my-tasks", "/dashboard", "/my-dashboard", "/me"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Errorf("%s: status %d location %q", path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	newTestEngine().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
