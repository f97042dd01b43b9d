package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/lkendi/Task-Management-System/internal/logging"
	"github.com/lkendi/Task-Management-System/internal/service"
)

// QRCodeSize is the edge length of generated QR images in pixels.
const QRCodeSize = 256

type QRCodeController struct {
	tasks  service.TaskService
	gate   Gate
	appURL string
}

func NewQRCodeController(tasks service.TaskService, gate Gate, appURL string) *QRCodeController {
	return &QRCodeController{
		tasks:  tasks,
		gate:   gate,
		appURL: appURL,
	}
}

// TaskQRCode handles GET /tasks/:id/qrcode - a PNG linking to the task
func (qc *QRCodeController) TaskQRCode(c *gin.Context) {
	if _, ok := qc.gate.Require(c, adminOnly...); !ok {
		return
	}
	id, ok := pathID(c, "task")
	if !ok {
		return
	}

	// Only existing tasks get a code
	if _, err := qc.tasks.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	link := fmt.Sprintf("%s/tasks/%d", qc.appURL, id)
	pngData, err := qrcode.Encode(link, qrcode.Medium, QRCodeSize)
	if err != nil {
		logging.Logger.WithError(err).WithField("task_id", id).Error("Failed to generate QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=task-%d.png", id))
	c.Data(http.StatusOK, "image/png", pngData)
}
