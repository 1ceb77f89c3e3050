package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/strategist/internal/documents"
	"github.com/fyrsmithlabs/strategist/internal/generator"
	"github.com/fyrsmithlabs/strategist/internal/knowledge"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MissingDescription is shown when a strategy is requested without a
// description.
const MissingDescription = "Please provide a campaign description"

const pageTemplate = "index.html"

// wantsJSON reports whether the client is the JSON API rather than the HTML
// form.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func (s *Server) page(c echo.Context) pageData {
	return pageData{
		Chunks: s.countChunks(c.Request().Context()),
		Cache:  s.strategies.Stats(),
	}
}

// respondError writes msg as JSON or as the page's error banner.
func (s *Server) respondError(c echo.Context, status int, msg string) error {
	if wantsJSON(c) {
		return c.JSON(status, ErrorResponse{Error: msg})
	}
	data := s.page(c)
	data.Error = msg
	return c.Render(status, pageTemplate, data)
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.Render(http.StatusOK, pageTemplate, s.page(c))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Status:  "ok",
		Version: s.config.Version,
		Chunks:  s.countChunks(c.Request().Context()),
		Cache:   s.strategies.Stats(),
	})
}

func (s *Server) handleClearCache(c echo.Context) error {
	n := s.strategies.Stats().Entries
	s.strategies.ClearCache()
	return c.JSON(http.StatusOK, ClearCacheResponse{Cleared: n})
}

func (s *Server) handleCreateStrategy(c echo.Context) error {
	ctx := c.Request().Context()

	var req StrategyRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(ctx, "invalid strategy request", zap.Error(err))
		return s.respondError(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Description) == "" {
		return s.respondError(c, http.StatusBadRequest, MissingDescription)
	}

	strategy, err := s.strategies.CreateStrategy(ctx, req.Description)
	if err != nil {
		failure := generator.FailureText(err)
		s.logger.Warn(ctx, "strategy generation failed", zap.Error(err))
		if wantsJSON(c) {
			return c.JSON(http.StatusBadGateway, ErrorResponse{Error: failure})
		}
		data := s.page(c)
		data.Description = req.Description
		data.Failure = failure
		return c.Render(http.StatusOK, pageTemplate, data)
	}

	pdf := s.saveStrategy(c, req.Description, strategy)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, StrategyResponse{
			Description: req.Description,
			Strategy:    strategy,
			PDF:         pdf,
		})
	}
	data := s.page(c)
	data.Description = req.Description
	data.Strategy = strategy
	data.PDF = pdf
	return c.Render(http.StatusOK, pageTemplate, data)
}

// saveStrategy writes the strategy PDF and returns its file name, or "" if
// writing failed.
func (s *Server) saveStrategy(c echo.Context, description, strategy string) string {
	path, err := documents.WriteStrategy(description, strategy, s.config.OutputDir)
	if err != nil {
		s.logger.Warn(c.Request().Context(), "saving strategy pdf failed", zap.Error(err))
		return ""
	}
	return filepath.Base(path)
}

// validStrategyFile accepts only names WriteStrategy can produce.
func validStrategyFile(name string) bool {
	return name != "" &&
		name == filepath.Base(name) &&
		!strings.Contains(name, "..") &&
		strings.HasPrefix(name, "strategy_") &&
		strings.HasSuffix(name, ".pdf")
}

func (s *Server) handleDownload(c echo.Context) error {
	name := c.Param("file")
	if !validStrategyFile(name) {
		return echo.NewHTTPError(http.StatusNotFound, "strategy not found")
	}
	path := filepath.Join(s.config.OutputDir, name)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return echo.NewHTTPError(http.StatusNotFound, "strategy not found")
	}
	return c.Attachment(path, name)
}

func (s *Server) handleUpload(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return s.respondError(c, http.StatusBadRequest, "Please choose a PDF file to upload")
	}

	text, err := extractUpload(fh)
	if err != nil {
		s.logger.Warn(ctx, "could not read uploaded pdf", zap.String("file", fh.Filename), zap.Error(err))
		return s.respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("Could not read %s: %v", fh.Filename, err))
	}
	if strings.TrimSpace(text) == "" {
		return s.respondError(c, http.StatusUnprocessableEntity, fmt.Sprintf("%s contains no extractable text", fh.Filename))
	}

	n, err := s.knowledge.IngestDocument(ctx, knowledge.Document{Source: fh.Filename, Text: text}, s.config.ChunkSize)
	if err != nil {
		s.logger.Error(ctx, "ingesting uploaded pdf failed", zap.String("file", fh.Filename), zap.Error(err))
		return s.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to add %s to the knowledge base", fh.Filename))
	}

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, UploadResponse{Source: fh.Filename, Chunks: n})
	}
	data := s.page(c)
	data.Notice = fmt.Sprintf("Added %s to the knowledge base (%d chunks).", fh.Filename, n)
	return c.Render(http.StatusOK, pageTemplate, data)
}

// extractUpload extracts the text of an uploaded PDF in memory. The body
// limit middleware bounds its size.
func extractUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return documents.ExtractTextFromBytes(content)
}
