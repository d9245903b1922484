package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/extract"
	"github.com/japaniel/vocabforge/pkg/ingest"
)

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("id must be a positive integer"))
		return 0, false
	}
	return id, true
}

type createBookRequest struct {
	Title     string `json:"title" binding:"required"`
	Author    string `json:"author"`
	Level     string `json:"level"`
	Overwrite bool   `json:"overwrite"`
}

// POST /api/books
func (s *Server) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("title must be non-empty"))
		return
	}
	id, err := s.books.UpsertBook(c.Request.Context(), db.BookInput{Title: req.Title, Author: req.Author, Level: req.Level}, req.Overwrite)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GET /api/books
func (s *Server) ListBooks(c *gin.Context) {
	books, err := s.books.ListBooks(c.Request.Context())
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"books": books})
}

// GET /api/books/:id
func (s *Server) GetBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	book, err := s.books.GetBook(c.Request.Context(), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, book)
}

// GET /api/books/:id/words?limit=N
func (s *Server) BookWords(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a non-negative integer"))
		return
	}
	words, err := s.books.GetWordsByBook(c.Request.Context(), id, limit)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"words": words})
}

// ingestStatusCode maps an enqueue outcome to an HTTP status.
func ingestStatusCode(st ingest.State) int {
	switch st {
	case ingest.StateSuccess:
		return http.StatusOK
	case ingest.StateQueued:
		return http.StatusAccepted
	case ingest.StateAlreadyProcessing:
		return http.StatusConflict
	case ingest.StateBusy:
		return http.StatusServiceUnavailable
	case ingest.StateTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}

// POST /api/books/:id/ingest?format=epub
// The request body is the raw book file.
func (s *Server) IngestBook(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	format, err := extract.ParseFormat(c.DefaultQuery("format", "txt"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unsupported_format", err)
		return
	}
	if _, err := s.books.GetBook(c.Request.Context(), id); err != nil {
		s.respondServiceError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if len(body) == 0 {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("empty body"))
		return
	}

	res := s.ingester.Enqueue(c.Request.Context(), id, body, format)
	c.JSON(ingestStatusCode(res.Status), res)
}

// GET /api/books/:id/status
func (s *Server) IngestStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	st, found := s.ingester.Status(id)
	if !found {
		RespondError(c, http.StatusNotFound, "not_found", errors.New("no ingestion status for this book"))
		return
	}
	RespondOK(c, st)
}

// GET /api/ingest/status
func (s *Server) IngestSnapshot(c *gin.Context) {
	RespondOK(c, gin.H{"statuses": s.ingester.Snapshot()})
}
