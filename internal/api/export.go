package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/internal/export"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// SnapshotExporter writes a catalog snapshot to object storage
type SnapshotExporter interface {
	Export(ctx context.Context) (*export.Result, error)
}

type ExportHandler struct {
	exporter SnapshotExporter
	logger   *zap.Logger
}

func NewExportHandler(exporter SnapshotExporter, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{exporter: exporter, logger: logger}
}

func (h *ExportHandler) RegisterRoutes(router *gin.RouterGroup, write ...gin.HandlerFunc) {
	router.POST("/exports", chain(write, h.CreateExport)...)
}

func (h *ExportHandler) CreateExport(c *gin.Context) {
	result, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, types.APIResponse{Message: "Catalog snapshot exported", Data: result, Success: true})
}
