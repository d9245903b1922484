package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/japaniel/vocabforge/pkg/srs"
)

type createDeckRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GET /api/decks
func (s *Server) ListDecks(c *gin.Context) {
	decks, err := s.study.ListDecks(c.Request.Context(), userID(c))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"decks": decks})
}

// POST /api/decks
func (s *Server) CreateDeck(c *gin.Context) {
	var req createDeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deck, err := s.study.CreateDeck(c.Request.Context(), userID(c), req.Name, req.Description)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deck)
}

// GET /api/decks/:id
func (s *Server) GetDeck(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	deck, err := s.study.GetDeck(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, deck)
}

// DELETE /api/decks/:id
func (s *Server) DeleteDeck(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.study.DeleteDeck(c.Request.Context(), userID(c), id); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/decks/:id/stats
func (s *Server) DeckStatistics(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	st, err := s.study.DeckStatistics(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, st)
}

// GET /api/decks/:id/cards
func (s *Server) DeckCards(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cards, err := s.study.DeckCards(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cards": cards})
}

// GET /api/decks/:id/review?all=true
// all=true lifts the daily new-card budget.
func (s *Server) ReviewQueue(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.study.GetDeck(ctx, userID(c), id); err != nil {
		s.respondServiceError(c, err)
		return
	}
	cards, err := s.study.GetCardsForReview(ctx, id, c.Query("all") != "true")
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cards": cards})
}

type addCardRequest struct {
	WordID int64  `json:"word_id" binding:"required"`
	DeckID *int64 `json:"deck_id"`
}

// POST /api/cards
// Without deck_id the card goes to the user's main deck.
func (s *Server) AddCard(c *gin.Context) {
	var req addCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	id, err := s.study.AddWordToDeck(c.Request.Context(), userID(c), req.WordID, req.DeckID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"card_id": id})
}

// DELETE /api/cards/:id
func (s *Server) RemoveCard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.study.RemoveCard(c.Request.Context(), userID(c), id); err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reviewRequest struct {
	Grade string `json:"grade" binding:"required"`
}

// POST /api/cards/:id/review
func (s *Server) ReviewCard(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	grade, err := srs.ParseGrade(req.Grade)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	card, err := s.study.ProcessReview(c.Request.Context(), id, userID(c), grade)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, card)
}

// GET /api/cards/:id/history
func (s *Server) CardHistory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	hist, err := s.study.CardHistory(c.Request.Context(), userID(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reviews": hist})
}

// GET /api/stats
func (s *Server) UserStatistics(c *gin.Context) {
	st, err := s.study.GetUserStatistics(c.Request.Context(), userID(c))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	RespondOK(c, st)
}
