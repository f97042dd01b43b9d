package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/models"
	"github.com/lkendi/Task-Management-System/internal/service"
)

type TaskController struct {
	tasks service.TaskService
	gate  Gate
}

func NewTaskController(tasks service.TaskService, gate Gate) *TaskController {
	return &TaskController{tasks: tasks, gate: gate}
}

// List handles GET /tasks
func (tc *TaskController) List(c *gin.Context) {
	if _, ok := tc.gate.Require(c, adminOnly...); !ok {
		return
	}

	page, err := tc.tasks.List(c.Request.Context(), c.Request.URL.Query(), c.Request.URL.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /tasks/:id
func (tc *TaskController) Get(c *gin.Context) {
	if _, ok := tc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "task")
	if !ok {
		return
	}

	task, err := tc.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create handles POST /tasks
func (tc *TaskController) Create(c *gin.Context) {
	actor, ok := tc.gate.Require(c, adminOnly...)
	if !ok {
		return
	}

	var req models.TaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := tc.tasks.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Task created successfully", "data": task})
}

// Update handles PATCH /tasks/:id
func (tc *TaskController) Update(c *gin.Context) {
	if _, ok := tc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "task")
	if !ok {
		return
	}

	var req models.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := tc.tasks.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "data": task})
}

// Delete handles DELETE /tasks/:id
func (tc *TaskController) Delete(c *gin.Context) {
	if _, ok := tc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "task")
	if !ok {
		return
	}

	if err := tc.tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// MyTasks handles GET /my-tasks
func (tc *TaskController) MyTasks(c *gin.Context) {
	actor, ok := tc.gate.Require(c, anyRole...)
	if !ok {
		return
	}

	page, err := tc.tasks.ListAssigned(c.Request.Context(), actor, c.Request.URL.Query(), c.Request.URL.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateMyTask handles PATCH /my-tasks/:id
func (tc *TaskController) UpdateMyTask(c *gin.Context) {
	actor, ok := tc.gate.Require(c, anyRole...)
	if !ok {
		return
	}
	id, ok := pathID(c, "task")
	if !ok {
		return
	}

	var req models.UpdateTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := tc.tasks.UpdateAssignedStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "data": task})
}
