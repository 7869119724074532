package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/alimgiray/whodid/internal/services"
	"github.com/alimgiray/whodid/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Download streams the contributor activity workbook as an xlsx file
func (h *ExportHandler) Download(c *gin.Context) {
	filename := fmt.Sprintf("contributor-activity-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exportService.WriteWorkbook(c.Writer); err != nil {
		logger.WithError(err).Error("Workbook export failed")
		c.Status(http.StatusInternalServerError)
	}
}
