package controllers

import (
	"context"
	"errors"
	"net/http"

	"serialtag/internal/models"
	"serialtag/internal/store"

	"github.com/gin-gonic/gin"
)

type BatchReader interface {
	ListBatches(ctx context.Context) ([]string, error)
	Read(ctx context.Context, id string) (models.Batch, error)
}

type BatchesController struct {
	batchStore BatchReader
}

type BatchListResponse struct {
	Batches []string `json:"batches"`
}

func NewBatchesController(batchStore BatchReader) (*BatchesController, error) {
	if batchStore == nil {
		return nil, errors.New("batch store is nil")
	}

	return &BatchesController{batchStore: batchStore}, nil
}

func (c *BatchesController) RegisterRoutes(router *gin.Engine) error {
	if c == nil {
		return errors.New("batches controller is nil")
	}
	if router == nil {
		return errors.New("router is nil")
	}

	router.GET("/batches", c.listBatches)
	router.GET("/batches/:id", c.getBatch)
	return nil
}

func (c *BatchesController) listBatches(ctx *gin.Context) {
	ids, err := c.batchStore.ListBatches(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list batches"})
		return
	}
	if ids == nil {
		ids = []string{}
	}

	ctx.JSON(http.StatusOK, BatchListResponse{Batches: ids})
}

func (c *BatchesController) getBatch(ctx *gin.Context) {
	batch, err := c.batchStore.Read(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrBatchNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{Error: "batch not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read batch"})
		return
	}

	ctx.JSON(http.StatusOK, batch)
}
