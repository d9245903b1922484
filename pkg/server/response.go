package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/srs"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes an error envelope and aborts the chain.
func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps domain errors to HTTP statuses. Unknown errors
// are logged and reported as 500 without their details.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, srs.ErrInvalidGrade):
		RespondError(c, http.StatusBadRequest, "invalid_grade", err)
	case errors.Is(err, srs.ErrCardNotFound):
		RespondError(c, http.StatusNotFound, "card_not_found", err)
	case errors.Is(err, srs.ErrDeckNotFound):
		RespondError(c, http.StatusNotFound, "deck_not_found", err)
	case errors.Is(err, srs.ErrWordNotFound):
		RespondError(c, http.StatusNotFound, "word_not_found", err)
	case errors.Is(err, db.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	default:
		s.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
