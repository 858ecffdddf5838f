package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"codeberg.org/mutker/tpfanctl/internal/errors"
	"codeberg.org/mutker/tpfanctl/internal/fan"
	"codeberg.org/mutker/tpfanctl/internal/logger"
	"codeberg.org/mutker/tpfanctl/internal/sensors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the fan controller and temperature reader over HTTP.
// Fan writes are serialized.
type Server struct {
	fan     fan.Controller
	sensors sensors.TemperatureReader
	logger  logger.Logger
	mu      sync.Mutex
	engine  *gin.Engine
}

type errorResponse struct {
	Code  errors.ErrorCode `json:"code"`
	Error string           `json:"error"`
	Help  string           `json:"help,omitempty"`
}

type fanResponse struct {
	Speed   string `json:"speed"`
	Changed bool   `json:"changed"`
}

type setFanRequest struct {
	Speed string `json:"speed" binding:"required"`
}

// New builds a Server and registers its routes
func New(c fan.Controller, r sensors.TemperatureReader, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		fan:     c,
		sensors: r,
		logger:  log,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.logRequests)

	s.engine.GET("/temperatures", s.getTemperatures)
	s.engine.GET("/temperatures/:core", s.getCoreTemperature)
	s.engine.GET("/cores", s.getCores)
	s.engine.GET("/rpm", s.getRPM)
	s.engine.GET("/fan", s.getFan)
	s.engine.PUT("/fan", s.setFan)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errFactory := errors.New()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()

	s.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("duration", time.Since(start)).
		Msg("Request")
}

func (s *Server) getTemperatures(c *gin.Context) {
	temps, err := s.sensors.Temperatures(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, temps)
}

func (s *Server) getCoreTemperature(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("core"), 10, 8)
	if err != nil {
		s.fail(c, errors.New().WithDescription(errors.ErrInvalidValue, "Core "+c.Param("core")+" is not valid!"))
		return
	}

	core, err := s.sensors.CoreTemperature(c.Request.Context(), uint8(id))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, core)
}

func (s *Server) getCores(c *gin.Context) {
	ids, err := s.sensors.Cores(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	// []uint8 would encode as a base64 string
	cores := make([]int, len(ids))
	for i, id := range ids {
		cores[i] = int(id)
	}

	c.JSON(http.StatusOK, gin.H{"cores": cores})
}

func (s *Server) getRPM(c *gin.Context) {
	rpm, err := s.fan.RPM()
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rpm": rpm})
}

func (s *Server) getFan(c *gin.Context) {
	status, err := s.fan.Status()
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (s *Server) setFan(c *gin.Context) {
	var req setFanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.New().Wrap(errors.ErrInvalidValue, err))
		return
	}

	speed, err := fan.Parse(req.Speed)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.fan.CurrentSpeed()
	if err != nil {
		s.fail(c, err)
		return
	}

	if current == speed.String() {
		c.JSON(http.StatusOK, fanResponse{Speed: current})
		return
	}

	if err := s.fan.SetSpeed(speed); err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info().Str("speed", speed.String()).Msg("Fan speed set")
	c.JSON(http.StatusOK, fanResponse{Speed: speed.String(), Changed: true})
}

func (s *Server) fail(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.ErrInternal
	}

	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Code:  code,
		Error: err.Error(),
		Help:  errors.HelpOf(err),
	})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidValue, errors.ErrValueTooHigh, errors.ErrValueTooLow:
		return http.StatusBadRequest
	case errors.ErrFileNotFound:
		return http.StatusNotFound
	case errors.ErrPermissionDenied:
		return http.StatusForbidden
	case errors.ErrFanControlDisabled, errors.ErrAlreadyRunning:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
