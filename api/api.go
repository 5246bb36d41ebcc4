// Package api exposes the todo store over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

type server struct {
	store Store
	log   *log.Logger
	opts  *options
}

// New returns an Echo instance with the API routes, JSON error handling,
// panic recovery, CORS and request logging installed.
func New(store Store, logger *log.Logger, opts ...Option) *echo.Echo {
	if logger == nil {
		logger = log.StandardLogger()
	}

	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}).Info("request")
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.WithError(err).WithField("stack", string(stack)).Error("panic recovered")
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: o.allowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	Register(e, store, logger, opts...)
	return e
}

// Register wires up all API routes and the JSON error handler on the
// provided Echo instance.
func Register(e *echo.Echo, store Store, logger *log.Logger, opts ...Option) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	o := newOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &server{store: store, log: logger, opts: o}

	e.HTTPErrorHandler = s.handleHTTPError

	e.GET("/health", s.health)
	e.GET("/todos", s.listTodos)
	e.POST("/todos", s.createTodo)
	e.GET("/todos/:id", s.getTodo)
	e.PUT("/todos/:id", s.updateTodo)
	e.DELETE("/todos/:id", s.deleteTodo)
}

func (s *server) now() time.Time {
	return s.opts.clock()
}

// handleHTTPError renders errors that escaped a handler: unknown routes,
// disallowed methods and recovered panics. Internal detail is logged, never
// returned.
func (s *server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch he.Code {
		case http.StatusNotFound:
			message = "Endpoint not found"
		case http.StatusMethodNotAllowed:
			message = "Method not allowed"
		default:
			if he.Code < http.StatusInternalServerError {
				message = http.StatusText(he.Code)
			}
		}
	}

	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithFields(log.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorResponse{Error: message})
	}
	if err != nil {
		s.log.WithError(err).Error("failed to write error response")
	}
}
