package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/service"
)

type UserController struct {
	users service.UserService
	gate  Gate
}

func NewUserController(users service.UserService, gate Gate) *UserController {
	return &UserController{users: users, gate: gate}
}

// List handles GET /users
func (uc *UserController) List(c *gin.Context) {
	if _, ok := uc.gate.Require(c, adminOnly...); !ok {
		return
	}

	page, err := uc.users.List(c.Request.Context(), c.Request.URL.Query(), c.Request.URL.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /users/:id
func (uc *UserController) Get(c *gin.Context) {
	if _, ok := uc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	user, err := uc.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create handles POST /users
func (uc *UserController) Create(c *gin.Context) {
	if _, ok := uc.gate.Require(c, adminOnly...); !ok {
		return
	}

	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.users.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "data": user})
}

// Update handles PUT /users/:id
func (uc *UserController) Update(c *gin.Context) {
	if _, ok := uc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := uc.users.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "data": user})
}

// Delete handles DELETE /users/:id
func (uc *UserController) Delete(c *gin.Context) {
	if _, ok := uc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	if err := uc.users.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
