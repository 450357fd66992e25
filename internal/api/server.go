package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"proforma/internal/logger"
	"proforma/internal/pipeline"
	"proforma/internal/settings"
	"proforma/internal/storage"
)

const requestIDHeader = "X-Request-ID"

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type handler func(c *gin.Context) error

type Server struct {
	gen   *pipeline.GenerationService
	store *settings.Store
	db    *storage.DB
	log   zerolog.Logger
}

func NewServer(gen *pipeline.GenerationService, store *settings.Store, db *storage.DB) *Server {
	return &Server{gen: gen, store: store, db: db, log: logger.WithComponent("api")}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	r.GET("/healthz", s.wrap(s.health))

	v1 := r.Group("/api/v1")
	v1.POST("/invoices/preview", s.wrap(s.previewInvoice))
	v1.POST("/invoices", s.wrap(s.createInvoice))
	v1.GET("/invoices", s.wrap(s.listInvoices))
	v1.GET("/invoices/:number", s.wrap(s.getInvoice))
	v1.POST("/orders", s.wrap(s.parseOrders))
	return r
}

// wrap lets handlers return errors; the error becomes the failure envelope.
func (s *Server) wrap(h handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := h(c)
		if err == nil {
			return
		}
		status, code := mapError(err)
		log := logger.WithRequestID(c.GetString("request_id"))
		ev := log.Warn()
		if status >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).Str("component", "api").Int("status", status).Msg("request failed")
		c.AbortWithStatusJSON(status, envelope{Error: &errorBody{Code: code, Message: err.Error()}})
	}
}

func respond(c *gin.Context, status int, data any) error {
	c.JSON(status, envelope{Success: true, Data: data})
	return nil
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
