package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BatchLister interface {
	ListBatches(ctx context.Context) ([]string, error)
}

type HealthResponse struct {
	Status  string `json:"status"`
	Batches int    `json:"batches"`
}

// RegisterHealthRoutes wires a health probe that also checks the batch store
// is reachable.
func RegisterHealthRoutes(router *gin.Engine, batchStore BatchLister) error {
	if router == nil {
		return errors.New("router is nil")
	}
	if batchStore == nil {
		return errors.New("batch store is nil")
	}

	router.GET("/health", HealthHandler(batchStore))
	return nil
}

func HealthHandler(batchStore BatchLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := batchStore.ListBatches(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Batches: len(ids)})
	}
}
