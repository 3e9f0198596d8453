package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"serialtag/internal/models"
	"serialtag/internal/services"

	"github.com/gin-gonic/gin"
)

type RecordFinder interface {
	Find(ctx context.Context, serial string) (models.Record, error)
}

type ScanController struct {
	service RecordFinder
}

type ScanResponse struct {
	SerialCode string            `json:"serial_code"`
	IssuedAt   time.Time         `json:"issued_at"`
	ScanURL    string            `json:"scan_url,omitempty"`
	Fields     map[string]string `json:"fields"`
}

func NewScanController(service RecordFinder) (*ScanController, error) {
	if service == nil {
		return nil, errors.New("lookup service is nil")
	}

	return &ScanController{service: service}, nil
}

func (c *ScanController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("scan controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/scan/:serial", c.scan)
	return nil
}

func (c *ScanController) scan(ctx *gin.Context) {
	serial := ctx.Param("serial")

	record, err := c.service.Find(ctx.Request.Context(), serial)
	if err != nil {
		// Both misses are 404, with distinct messages so callers can
		// tell an empty system from a wrong code.
		if errors.Is(err, services.ErrNoBatches) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "no batches ingested yet"})
			return
		}
		if errors.Is(err, services.ErrSerialNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "serial code not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to look up serial"})
		return
	}

	ctx.JSON(http.StatusOK, ScanResponse{
		SerialCode: record.SerialCode,
		IssuedAt:   record.IssuedAt,
		ScanURL:    record.ScanURL,
		Fields:     record.Fields,
	})
}
