package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/access"
	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/entities"
	"github.com/lkendi/Task-Management-System/internal/logging"
	"github.com/lkendi/Task-Management-System/internal/middleware"
)

var (
	adminOnly = []entities.Role{entities.RoleAdmin}
	anyRole   = []entities.Role{entities.RoleAdmin, entities.RoleUser}
)

// Gate runs the access check at the top of every protected action.
type Gate struct {
	LoginPath string
}

// Require returns the actor when it holds one of roles. Otherwise it has
// already answered the request: a redirect to the login page for anonymous
// callers, 403 for everyone else.
func (g Gate) Require(c *gin.Context, roles ...entities.Role) (*access.Actor, bool) {
	actor := middleware.ActorFrom(c)
	switch access.Authorize(actor, roles...) {
	case access.Unauthenticated:
		c.Redirect(http.StatusFound, g.LoginPath)
		c.Abort()
		return nil, false
	case access.Forbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized action."})
		return nil, false
	}
	return actor, true
}

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	var bad *apperrors.BadRequestError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"errors": verr.Fields,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &bad):
		c.JSON(http.StatusBadRequest, gin.H{"error": bad.Message})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized action."})
	default:
		logging.Logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes the request body into req, answering 400 on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// pathID parses the :id parameter. A non-numeric id names no record.
func pathID(c *gin.Context, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": entity + " not found"})
		return 0, false
	}
	return id, true
}
