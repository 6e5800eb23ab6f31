package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/howzat/howzat/engine/fusion"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/pkg/logger"
)

// Error codes returned in the error envelope.
const (
	ErrInvalidRequestCode = "invalid_request"
	ErrBatchTooLargeCode  = "batch_too_large"
	ErrNoDataCode         = "no_data_available"
	ErrInternalCode       = "internal_error"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type queryRequest struct {
	Query     string            `json:"query"`
	SessionID string            `json:"session_id"`
	Context   map[string]string `json:"context"`
}

type batchRequest struct {
	Queries []queryRequest `json:"queries"`
}

type batchEntry struct {
	Answer any            `json:"answer,omitempty"`
	Error  *errorResponse `json:"error,omitempty"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestCode, Details: err.Error()})
		return
	}
	q, err := query.New(req.Query, req.SessionID, req.Context)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestCode, Details: err.Error()})
		return
	}
	answer, err := s.pipeline.Answer(c.Request.Context(), q)
	if err != nil {
		s.respondPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleQueryBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestCode, Details: err.Error()})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: ErrInvalidRequestCode, Details: "queries cannot be empty"})
		return
	}
	if limit := s.cfg.Server.BatchLimit; len(req.Queries) > limit {
		c.JSON(http.StatusBadRequest, errorResponse{Error: ErrBatchTooLargeCode,
			Details: "batch exceeds the configured limit"})
		return
	}

	queries := make([]*query.Query, 0, len(req.Queries))
	entries := make([]batchEntry, len(req.Queries))
	index := make([]int, 0, len(req.Queries))
	for i, item := range req.Queries {
		q, err := query.New(item.Query, item.SessionID, item.Context)
		if err != nil {
			entries[i] = batchEntry{Error: &errorResponse{Error: ErrInvalidRequestCode, Details: err.Error()}}
			continue
		}
		queries = append(queries, q)
		index = append(index, i)
	}

	results := s.pipeline.AnswerBatch(c.Request.Context(), queries)
	for pos, result := range results {
		i := index[pos]
		if result.Err != nil {
			entries[i] = batchEntry{Error: batchError(result.Err)}
			continue
		}
		entries[i] = batchEntry{Answer: result.Answer}
	}
	c.JSON(http.StatusOK, gin.H{"results": entries})
}

func (s *Server) handleTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": s.registry.Descriptors()})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	cacheStatus := "disabled"
	if s.cache != nil {
		cacheStatus = "up"
		if err := s.cache.HealthCheck(c.Request.Context()); err != nil {
			// Cache loss degrades latency, not availability.
			logger.FromContext(c.Request.Context()).Warn("cache health check failed", "error", err)
			cacheStatus = "down"
			status = "degraded"
		}
	}
	c.JSON(code, gin.H{
		"status": status,
		"cache":  cacheStatus,
		"tools":  len(s.registry.Names()),
	})
}

func (s *Server) respondPipelineError(c *gin.Context, err error) {
	resp := batchError(err)
	status := http.StatusInternalServerError
	if resp.Error == ErrNoDataCode {
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

func batchError(err error) *errorResponse {
	if errors.Is(err, fusion.ErrNoData) {
		return &errorResponse{Error: ErrNoDataCode, Details: "all routed tools failed"}
	}
	return &errorResponse{Error: ErrInternalCode, Details: err.Error()}
}
