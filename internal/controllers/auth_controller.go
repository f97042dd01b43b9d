package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/middleware"
	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/service"
)

type AuthController struct {
	authService  service.AuthService
	userService  service.UserService
	gate         Gate
	cookieSecure bool
}

func NewAuthController(authService service.AuthService, userService service.UserService, gate Gate, cookieSecure bool) *AuthController {
	return &AuthController{
		authService:  authService,
		userService:  userService,
		gate:         gate,
		cookieSecure: cookieSecure,
	}
}

// LoginPage handles GET /login
func (ac *AuthController) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Please log in.",
		"login":   gin.H{"method": http.MethodPost, "path": ac.gate.LoginPath, "fields": []string{"email", "password"}},
	})
}

// Login handles POST /login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(time.Until(response.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, response.Token, maxAge, "/", "", ac.cookieSecure, true)
	c.JSON(http.StatusOK, response)
}

// Logout handles POST /logout
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ac.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /me
func (ac *AuthController) Me(c *gin.Context) {
	actor, ok := ac.gate.Require(c, anyRole...)
	if !ok {
		return
	}

	user, err := ac.userService.Get(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
