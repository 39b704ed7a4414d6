// =============================================================================
// Tally Sales XML - HTTP Server
// =============================================================================
//
// A small web front end for the converter: upload a sales sheet, download
// the Tally import file.
//
// ROUTES:
//   GET  /         Upload form
//   POST /convert  Multipart field "file" -> SalesData.xml attachment
//   GET  /healthz  Liveness check
//
// STATUS CODES (POST /convert):
//   200  XML attachment
//   204  The sheet has no data rows; nothing to download
//   400  No file, unsupported type or unreadable sheet
//   413  Upload larger than MaxUploadBytes
//   422  Strict mode rejected the sheet; details lists every problem
//   500  Anything else
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ginjaninja78/tally-sales-xml/internal/converter"
	"github.com/ginjaninja78/tally-sales-xml/internal/logger"
	"github.com/ginjaninja78/tally-sales-xml/internal/types"
	"github.com/ginjaninja78/tally-sales-xml/internal/validation"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"

	// DownloadName is the file name offered for the generated XML.
	DownloadName = "SalesData.xml"

	// MaxUploadBytes caps the size of an uploaded sheet.
	MaxUploadBytes = 32 << 20

	requestIDKey = "request_id"
)

// Server serves the upload page and the conversion endpoint.
type Server struct {
	conv   *converter.Converter
	router *gin.Engine
}

// New creates a Server that converts uploads with conv.
func New(conv *converter.Converter) *Server {
	s := &Server{conv: conv}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), accessLog())

	router.GET("/", s.handleIndex)
	router.GET("/healthz", s.handleHealth)
	router.POST("/convert", bodyLimit(MaxUploadBytes), s.handleConvert)

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log := logger.WithComponent("server")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uploadPage))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConvert(c *gin.Context) {
	log := logger.WithRequestID(c.GetString(requestIDKey))

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds the size limit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field \"file\""})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	records, err := s.conv.Load(header.Filename, file)
	if err != nil {
		log.Warn().Err(err).Str("file", header.Filename).Msg("could not read upload")
		status := http.StatusInternalServerError
		if isDecodeError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	data, err := s.conv.Convert(records)
	if err != nil {
		var ve *validation.Error
		if errors.As(err, &ve) {
			details := make([]string, 0, len(ve.Errs))
			for _, e := range ve.Errs {
				details = append(details, e.Error())
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": details,
			})
			return
		}
		log.Error().Err(err).Str("file", header.Filename).Msg("conversion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if data == nil {
		c.Status(http.StatusNoContent)
		return
	}

	log.Info().Str("file", header.Filename).Int("rows", len(records)).Msg("converted upload")
	c.Header("Content-Disposition", `attachment; filename="`+DownloadName+`"`)
	c.Data(http.StatusOK, "application/xml", data)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// requestID reuses the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// accessLog logs one line per request.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.WithRequestID(c.GetString(requestIDKey))
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// bodyLimit caps the request body at maxBytes.
func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds the size limit"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// isDecodeError reports whether err came from reading the sheet.
func isDecodeError(err error) bool {
	return errors.Is(err, types.ErrDecode)
}

const uploadPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Excel to Tally XML Converter - Sales</title>
</head>
<body>
<h1>Excel to Tally XML Converter - Sales</h1>
<form action="/convert" method="post" enctype="multipart/form-data">
  <input type="file" name="file" accept=".xlsx,.xlsm,.xltx,.xltm,.csv" required>
  <button type="submit">Generate XML</button>
</form>
</body>
</html>
`
