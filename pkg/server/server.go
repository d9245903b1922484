// Package server exposes ingestion and study over HTTP.
package server

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/extract"
	"github.com/japaniel/vocabforge/pkg/ingest"
	"github.com/japaniel/vocabforge/pkg/srs"
)

// Ingester is the ingestion engine as seen by the handlers.
type Ingester interface {
	Enqueue(ctx context.Context, bookID int64, body []byte, format extract.Format) ingest.Result
	Status(bookID int64) (ingest.Status, bool)
	Snapshot() []ingest.Status
}

// Books is the book catalogue.
type Books interface {
	UpsertBook(ctx context.Context, in db.BookInput, overwrite bool) (int64, error)
	GetBook(ctx context.Context, id int64) (db.Book, error)
	ListBooks(ctx context.Context) ([]db.Book, error)
	GetWordsByBook(ctx context.Context, bookID int64, limit int) ([]db.BookWord, error)
}

// Config tunes the HTTP layer.
type Config struct {
	// MaxUploadBytes caps an ingestion request body; zero means 64 MiB.
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

// Server holds the handlers' dependencies.
type Server struct {
	ingester Ingester
	books    Books
	study    *srs.Service
	cfg      Config
	log      logrus.FieldLogger
}

// New creates a Server.
func New(ingester Ingester, books Books, study *srs.Service, cfg Config) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = l
	}
	return &Server{ingester: ingester, books: books, study: study, cfg: cfg, log: cfg.Logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))

	router.GET("/healthcheck", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := router.Group("/api")
	{
		api.GET("/books", s.ListBooks)
		api.POST("/books", s.CreateBook)
		api.GET("/books/:id", s.GetBook)
		api.GET("/books/:id/words", s.BookWords)
		api.POST("/books/:id/ingest", s.IngestBook)
		api.GET("/books/:id/status", s.IngestStatus)
		api.GET("/ingest/status", s.IngestSnapshot)
	}

	study := api.Group("/")
	study.Use(RequireUser())
	{
		study.GET("/decks", s.ListDecks)
		study.POST("/decks", s.CreateDeck)
		study.GET("/decks/:id", s.GetDeck)
		study.DELETE("/decks/:id", s.DeleteDeck)
		study.GET("/decks/:id/stats", s.DeckStatistics)
		study.GET("/decks/:id/cards", s.DeckCards)
		study.GET("/decks/:id/review", s.ReviewQueue)

		study.POST("/cards", s.AddCard)
		study.DELETE("/cards/:id", s.RemoveCard)
		study.POST("/cards/:id/review", s.ReviewCard)
		study.GET("/cards/:id/history", s.CardHistory)

		study.GET("/stats", s.UserStatistics)
	}
	return router
}
