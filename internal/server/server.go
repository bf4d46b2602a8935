package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"reports_srv/internal/apperr"
	"reports_srv/internal/config"
	"reports_srv/internal/models"
	"reports_srv/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const ServiceName = "Reports Service"

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	DBCode      string `json:"dbCode,omitempty"`
	DBMessage   string `json:"dbMessage,omitempty"`
}

// StatusResponse describes the running service
type StatusResponse struct {
	Code        int       `json:"code"`
	Description string    `json:"description"`
	ServiceName string    `json:"serviceName"`
	UpSince     time.Time `json:"upSince"`
}

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	service service.ReportService
	logger  *logrus.Logger
	upSince time.Time
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, reportService service.ReportService, logger *logrus.Logger) *Server {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		echo:    e,
		service: reportService,
		logger:  logger,
		upSince: time.Now().UTC(),
	}

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("HTTP request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.HTTPErrorHandler = server.handleError

	server.setupRoutes()
	return server
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be mounted or tested as a plain http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	s.echo.GET("/", s.root)
	s.echo.GET("/status", s.status)
	s.echo.GET("/health", s.healthCheck)

	reports := s.echo.Group("/reports")
	{
		reports.GET("", s.listReports)
		reports.POST("", s.createReport)
		reports.GET("/export", s.exportReports)
		reports.GET("/:id", s.getReport)
		reports.PUT("/:id", s.modifyReport)
		reports.DELETE("/:id", s.deleteReport)
	}
}

func (s *Server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"service": ServiceName})
}

func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Code:        http.StatusOK,
		Description: http.StatusText(http.StatusOK),
		ServiceName: ServiceName,
		UpSince:     s.upSince,
	})
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

// listReports handles listing reports
func (s *Server) listReports(c echo.Context) error {
	var filter models.ReportFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return err
	}

	reports, err := s.service.ListReports(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}

// exportReports streams the filtered reports as an xlsx workbook
func (s *Server) exportReports(c echo.Context) error {
	var filter models.ReportFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return err
	}

	data, err := s.service.ExportReports(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "reports."+service.ExportExtension))
	return c.Blob(http.StatusOK, service.ExportMimeType, data)
}

// getReport handles getting a single report
func (s *Server) getReport(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	report, err := s.service.GetReport(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// createReport handles report creation
func (s *Server) createReport(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		return err
	}

	report, err := s.service.CreateReport(c.Request().Context(), payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// modifyReport handles report modification
func (s *Server) modifyReport(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	payload, err := readPayload(c)
	if err != nil {
		return err
	}

	report, err := s.service.ModifyReport(c.Request().Context(), id, payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// deleteReport handles report deletion
func (s *Server) deleteReport(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	report, err := s.service.DeleteReport(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid report ID").SetInternal(err)
	}
	return id, nil
}

// readPayload decodes the JSON body into a generic map; validation is left to the service.
// An empty body yields an empty payload.
func readPayload(c echo.Context) (map[string]any, error) {
	payload := map[string]any{}
	if err := c.Echo().JSONSerializer.Deserialize(c, &payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// handleError renders every error as an ErrorResponse
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	body := errorBody(err)
	logger := s.logger.WithFields(logrus.Fields{
		"status": body.Code,
		"uri":    c.Request().RequestURI,
	}).WithError(err)
	if body.Code >= http.StatusInternalServerError {
		logger.Error("Request failed")
	} else {
		logger.Debug("Request rejected")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(body.Code)
	} else {
		err = c.JSON(body.Code, body)
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to write error response")
	}
}

func errorBody(err error) ErrorResponse {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		code := apperr.HTTPStatus(appErr)
		body := ErrorResponse{
			Code:        code,
			Message:     http.StatusText(code),
			Description: appErr.Message,
			DBCode:      appErr.DBCode,
			DBMessage:   appErr.DBMessage,
		}
		if appErr.Description != "" {
			body.Description = appErr.Description
		}
		return body
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		body := ErrorResponse{Code: he.Code, Message: http.StatusText(he.Code)}
		if msg, ok := he.Message.(string); ok && msg != body.Message {
			body.Description = msg
		}
		return body
	}

	return ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}
