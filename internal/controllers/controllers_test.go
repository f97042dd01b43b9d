package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/jwt"
	"github.com/lkendi/Task-Management-System/internal/middleware"
	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/service/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSessions treats the bearer token as a key into a fixed user table.
type stubSessions map[string]*entities.User

func (s stubSessions) ValidateToken(token string) (*jwt.Claims, error) {
	u, ok := s[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return &jwt.Claims{UserID: u.ID}, nil
}

func (s stubSessions) FindByID(_ context.Context, id int64) (*entities.User, error) {
	for _, u := range s {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

var sessions = stubSessions{
	"admin-token": {ID: 1, Name: "Test Admin", Role: entities.RoleAdmin},
	"user-token":  {ID: 2, Name: "Test User", Role: entities.RoleUser},
}

var testGate = Gate{LoginPath: "/login"}

type fixture struct {
	engine     *gin.Engine
	users      *mocks.MockUserService
	projects   *mocks.MockProjectService
	tasks      *mocks.MockTaskService
	dashboards *mocks.MockDashboardService
	auth       *mocks.MockAuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		users:      mocks.NewMockUserService(ctrl),
		projects:   mocks.NewMockProjectService(ctrl),
		tasks:      mocks.NewMockTaskService(ctrl),
		dashboards: mocks.NewMockDashboardService(ctrl),
		auth:       mocks.NewMockAuthService(ctrl),
	}

	authC := NewAuthController(f.auth, f.users, testGate, false)
	userC := NewUserController(f.users, testGate)
	projectC := NewProjectController(f.projects, testGate)
	taskC := NewTaskController(f.tasks, testGate)
	qrC := NewQRCodeController(f.tasks, testGate, "http://app.test")
	dashC := NewDashboardController(f.dashboards, testGate)

	r := gin.New()
	r.Use(middleware.Session(sessions, sessions))
	r.POST("/login", authC.Login)
	r.POST("/logout", authC.Logout)
	r.GET("/me", authC.Me)
	r.GET("/users", userC.List)
	r.POST("/users", userC.Create)
	r.DELETE("/users/:id", userC.Delete)
	r.POST("/projects", projectC.Create)
	r.GET("/projects/:id", projectC.Get)
	r.GET("/tasks/:id", taskC.Get)
	r.POST("/tasks", taskC.Create)
	r.PATCH("/tasks/:id", taskC.Update)
	r.GET("/tasks/:id/qrcode", qrC.TaskQRCode)
	r.GET("/my-tasks", taskC.MyTasks)
	r.PATCH("/my-tasks/:id", taskC.UpdateMyTask)
	r.GET("/dashboard", dashC.Global)
	r.GET("/my-dashboard", dashC.Mine)
	f.engine = r
	return f
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func TestAccessGate(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		token    string
		wantCode int
	}{
		{"anonymous admin route", "/users", "", http.StatusFound},
		{"anonymous user route", "/my-tasks", "", http.StatusFound},
		{"unknown token", "/users", "bogus", http.StatusFound},
		{"user on admin route", "/users", "user-token", http.StatusForbidden},
		{"user on admin dashboard", "/dashboard", "user-token", http.StatusForbidden},
		{"user on own dashboard", "/my-dashboard", "user-token", http.StatusOK},
		{"admin on admin route", "/users", "admin-token", http.StatusOK},
		{"admin on own tasks", "/my-tasks", "admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.EXPECT().List(gomock.Any(), gomock.Any(), "/users").Return(&models.UserListResponse{}, nil).AnyTimes()
			f.tasks.EXPECT().ListAssigned(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(&models.TaskListResponse{}, nil).AnyTimes()
			f.dashboards.EXPECT().ForUser(gomock.Any(), gomock.Any()).Return(&models.DashboardResponse{}, nil).AnyTimes()

			w := f.do(http.MethodGet, tt.path, tt.token, nil)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			switch tt.wantCode {
			case http.StatusFound:
				if loc := w.Header().Get("Location"); loc != "/login" {
					t.Errorf("Location = %q", loc)
				}
			case http.StatusForbidden:
				if got := decode(t, w)["error"]; got != "Unauthorized action." {
					t.Errorf("error = %v", got)
				}
			}
		})
	}
}

func TestCreateUserValidationFailure(t *testing.T) {
	f := newFixture(t)
	f.users.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, &apperrors.ValidationError{Fields: map[string]string{"email": "The email has already been taken."}})

	w := f.do(http.MethodPost, "/users", "admin-token", map[string]string{"email": "a@example.com"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	body := decode(t, w)
	errs, _ := body["errors"].(map[string]any)
	if body["error"] != "validation failed" || errs["email"] != "The email has already been taken." {
		t.Errorf("body = %v", body)
	}
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/users", "admin-token", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	f.users.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)
	f.users.EXPECT().Delete(gomock.Any(), int64(6)).Return(apperrors.NotFound("user"))

	if w := f.do(http.MethodDelete, "/users/5", "admin-token", nil); w.Code != http.StatusOK {
		t.Errorf("delete existing: %d", w.Code)
	}
	if w := f.do(http.MethodDelete, "/users/6", "admin-token", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete missing: %d", w.Code)
	}
	if w := f.do(http.MethodDelete, "/users/abc", "admin-token", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete non-numeric: %d", w.Code)
	}
}

func TestCreateProjectPassesActor(t *testing.T) {
	f := newFixture(t)
	f.projects.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, actor *access.Actor, req *models.ProjectRequest) (*models.ProjectResponse, error) {
			if actor.ID != 1 || req.Name != "Launch" {
				t.Errorf("actor %d, req %+v", actor.ID, req)
			}
			return &models.ProjectResponse{ID: 3, Name: req.Name}, nil
		})

	w := f.do(http.MethodPost, "/projects", "admin-token", map[string]string{
		"name": "Launch", "start_date": "2025-01-01", "end_date": "2025-02-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	data, _ := decode(t, w)["data"].(map[string]any)
	if data["id"] != float64(3) {
		t.Errorf("data = %v", data)
	}
}

func TestCreateTaskWithoutProjects(t *testing.T) {
	f := newFixture(t)
	f.tasks.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.BadRequest("No project available to assign to the task."))

	w := f.do(http.MethodPost, "/tasks", "admin-token", map[string]string{"title": "T"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestPatchTaskDistinguishesNullFromAbsent(t *testing.T) {
	f := newFixture(t)
	f.tasks.EXPECT().Update(gomock.Any(), int64(4), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, req *models.UpdateTaskRequest) (*models.TaskResponse, error) {
			if !req.DueDate.Set || req.DueDate.Value != nil {
				t.Errorf("due_date should be an explicit null: %+v", req.DueDate)
			}
			if !req.AssignedTo.Set || req.AssignedTo.Value == nil || *req.AssignedTo.Value != 2 {
				t.Errorf("assigned_to = %+v", req.AssignedTo)
			}
			if req.Title.Set || req.Status.Set {
				t.Error("absent fields must stay unset")
			}
			return &models.TaskResponse{ID: 4}, nil
		})

	w := f.do(http.MethodPatch, "/tasks/4", "admin-token", `{"due_date": null, "assigned_to": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
}

func TestUpdateMyTaskOfSomeoneElse(t *testing.T) {
	f := newFixture(t)
	f.tasks.EXPECT().UpdateAssignedStatus(gomock.Any(), gomock.Any(), int64(9), gomock.Any()).
		Return(nil, apperrors.NotFound("task"))

	w := f.do(http.MethodPatch, "/my-tasks/9", "user-token", map[string]string{"status": "completed"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	f := newFixture(t)
	f.projects.EXPECT().Get(gomock.Any(), int64(1)).Return(nil, errors.New("pq: connection refused"))

	w := f.do(http.MethodGet, "/projects/1", "admin-token", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode(t, w)["error"]; got != "Internal server error" {
		t.Errorf("error = %v", got)
	}
}

func TestTaskQRCode(t *testing.T) {
	f := newFixture(t)
	f.tasks.EXPECT().Get(gomock.Any(), int64(12)).Return(&models.TaskResponse{ID: 12}, nil)
	f.tasks.EXPECT().Get(gomock.Any(), int64(13)).Return(nil, apperrors.NotFound("task"))

	w := f.do(http.MethodGet, "/tasks/12/qrcode", "admin-token", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("status = %d, content type %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	if w := f.do(http.MethodGet, "/tasks/13/qrcode", "admin-token", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing task: %d", w.Code)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	f := newFixture(t)
	f.auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(&models.AuthResponse{
		Token:     "signed",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	w := f.do(http.MethodPost, "/login", "", map[string]string{"email": "admin@example.com", "password": "password"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookie || cookies[0].Value != "signed" || !cookies[0].HttpOnly {
		t.Errorf("cookies = %v", cookies)
	}

	w = f.do(http.MethodPost, "/logout", "", nil)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, got %v", cookies)
	}
}

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.users.EXPECT().Get(gomock.Any(), int64(2)).Return(&models.UserResponse{ID: 2, Name: "Test User"}, nil)

	w := f.do(http.MethodGet, "/me", "user-token", nil)
	if w.Code != http.StatusOK || decode(t, w)["name"] != "Test User" {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	for _, tt := range []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("down"), http.StatusServiceUnavailable},
	} {
		r := gin.New()
		r.GET("/health", Health(pinger{tt.err}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != tt.want {
			t.Errorf("err %v: status = %d, want %d", tt.err, w.Code, tt.want)
		}
	}
}
