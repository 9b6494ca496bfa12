package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"TweetScanner/internal/domain"
)

// IngestService is the slice of the ingestor the handlers need.
type IngestService interface {
	IngestUser(ctx context.Context, username string, mode domain.EnrichMode) (domain.BatchReport, error)
	IngestSearch(ctx context.Context, query string, mode domain.EnrichMode) (domain.BatchReport, error)
	IngestPost(ctx context.Context, postURL string, mode domain.EnrichMode) (domain.BatchReport, error)
}

// Server exposes the ingestion pipeline over HTTP. All query-parameter
// validation lives here; the core never sees malformed input.
type Server struct {
	ingestor IngestService
	logger   *slog.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(ingestor IngestService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{ingestor: ingestor, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleHealth)
	r.GET("/scrape/user", s.handleScrapeUser)
	r.GET("/scrape/search", s.handleScrapeSearch)
	r.GET("/scrape/post", s.handleScrapePost)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleScrapeUser(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	report, err := s.ingestor.IngestUser(c.Request.Context(), username, parseMode(c.Query("mode")))
	s.respond(c, report, err)
}

func (s *Server) handleScrapeSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	report, err := s.ingestor.IngestSearch(c.Request.Context(), query, parseMode(c.Query("mode")))
	s.respond(c, report, err)
}

func (s *Server) handleScrapePost(c *gin.Context) {
	postURL := strings.TrimSpace(c.Query("url"))
	if postURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	if !validPostURL(postURL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute post URL"})
		return
	}

	report, err := s.ingestor.IngestPost(c.Request.Context(), postURL, parseMode(c.Query("mode")))
	if err != nil {
		s.respond(c, report, err)
		return
	}

	c.JSON(statusFor(report), gin.H{
		"is_new": len(report.Persisted) > 0,
		"report": report,
	})
}

// respond maps a batch outcome to a response: source unavailable is a
// bad gateway, an all-errors batch a server error, anything else OK.
func (s *Server) respond(c *gin.Context, report domain.BatchReport, err error) {
	if err != nil {
		s.logger.Error("batch aborted", "source", report.Source, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "report": report})
		return
	}

	c.JSON(statusFor(report), gin.H{"report": report})
}

func statusFor(report domain.BatchReport) int {
	if report.AllFailed() {
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

func parseMode(raw string) domain.EnrichMode {
	switch strings.TrimSpace(raw) {
	case string(domain.EnrichSummarize):
		return domain.EnrichSummarize
	default:
		return domain.EnrichTeluguNews
	}
}

func validPostURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != "" && strings.Contains(parsed.Path, "/status/")
}
