package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/service"
)

type ProjectController struct {
	projects service.ProjectService
	gate     Gate
}

func NewProjectController(projects service.ProjectService, gate Gate) *ProjectController {
	return &ProjectController{projects: projects, gate: gate}
}

// List handles GET /projects
func (pc *ProjectController) List(c *gin.Context) {
	if _, ok := pc.gate.Require(c, adminOnly...); !ok {
		return
	}

	page, err := pc.projects.List(c.Request.Context(), c.Request.URL.Query(), c.Request.URL.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /projects/:id
func (pc *ProjectController) Get(c *gin.Context) {
	if _, ok := pc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	project, err := pc.projects.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Create handles POST /projects
func (pc *ProjectController) Create(c *gin.Context) {
	actor, ok := pc.gate.Require(c, adminOnly...)
	if !ok {
		return
	}

	var req models.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := pc.projects.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Project created successfully.", "data": project})
}

// Update handles PUT /projects/:id
func (pc *ProjectController) Update(c *gin.Context) {
	if _, ok := pc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	var req models.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := pc.projects.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully.", "data": project})
}

// Delete handles DELETE /projects/:id
func (pc *ProjectController) Delete(c *gin.Context) {
	if _, ok := pc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "project")
	if !ok {
		return
	}

	if err := pc.projects.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully."})
}
