package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"serialtag/internal/models"
	"serialtag/internal/services"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds an uploaded table file (25MB).
const maxUploadBytes = 25 * 1024 * 1024

type TableParser interface {
	Parse(ctx context.Context, filename string, data []byte) (services.Table, string, error)
}

type Ingestor interface {
	Ingest(ctx context.Context, table services.Table, sourceFormat string) (models.Batch, error)
}

type TableExporter interface {
	Export(ctx context.Context, batch models.Batch, format string) ([]byte, string, error)
}

type UploadController struct {
	parser   TableParser
	ingest   Ingestor
	exporter TableExporter
}

type ValidationResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing"`
	Found   []string `json:"found"`
}

func NewUploadController(parser TableParser, ingest Ingestor, exporter TableExporter) (*UploadController, error) {
	if parser == nil {
		return nil, errors.New("table parser is nil")
	}
	if ingest == nil {
		return nil, errors.New("ingest service is nil")
	}
	if exporter == nil {
		return nil, errors.New("export service is nil")
	}

	return &UploadController{parser: parser, ingest: ingest, exporter: exporter}, nil
}

func (c *UploadController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("upload controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.POST("/upload", c.upload)
	return nil
}

func (c *UploadController) upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read file"})
		return
	}
	data, readErr := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	closeErr := file.Close()
	if readErr != nil || closeErr != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read file"})
		return
	}

	table, format, err := c.parser.Parse(ctx.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported file format"})
			return
		}
		ctx.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to parse file"})
		return
	}

	batch, err := c.ingest.Ingest(ctx.Request.Context(), table, format)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			ctx.JSON(http.StatusBadRequest, ValidationResponse{
				Error:   "missing required columns",
				Missing: validationErr.Missing,
				Found:   validationErr.Found,
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to ingest file"})
		return
	}

	export, name, err := c.exporter.Export(ctx.Request.Context(), batch, format)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to export batch"})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	ctx.Data(http.StatusOK, exportContentType(format), export)
}

func exportContentType(format string) string {
	if format == services.FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
