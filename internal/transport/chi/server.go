package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/search/filter"
	"github.com/kailas-cloud/dinefind/internal/domain/search/mode"
	domsession "github.com/kailas-cloud/dinefind/internal/domain/session"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
	detailuc "github.com/kailas-cloud/dinefind/internal/usecase/detail"
	healthuc "github.com/kailas-cloud/dinefind/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/dinefind/internal/usecase/session"
)

// multipartOverhead is the slack allowed on top of the image size for
// multipart boundaries and part headers.
const multipartOverhead = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search session API.
type Server struct {
	sessions      *sessionuc.Registry
	details       *detailuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxImageBytes int
	upgrader      websocket.Upgrader
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	sessions *sessionuc.Registry,
	details *detailuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sessions:      sessions,
		details:       details,
		health:        health,
		logger:        logger,
		maxImageBytes: upload.DefaultMaxBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrRestaurantNotFound, http.StatusNotFound, ErrorCodeRestaurantNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidNumber, http.StatusBadRequest, ErrorCodeInvalidNumber),
		sentinelHandler(domain.ErrInvalidFilterMode, http.StatusBadRequest, ErrorCodeInvalidFilterMode),
		sentinelHandler(domain.ErrInvalidAxis, http.StatusBadRequest, ErrorCodeInvalidAxis),
		sentinelHandler(domain.ErrPageOutOfRange, http.StatusUnprocessableEntity, ErrorCodePageOutOfRange),
		sentinelHandler(domain.ErrInvalidImage, http.StatusBadRequest, ErrorCodeInvalidImage),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, ErrorCodeBackendError),
		sentinelHandler(domain.ErrBackendStatus, http.StatusBadGateway, ErrorCodeBackendError),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, ErrorCodeBackendError),
	}
	return s
}

// WithMaxImageBytes sets the upload size limit of image searches.
func (s *Server) WithMaxImageBytes(n int) *Server {
	if n > 0 {
		s.maxImageBytes = n
	}
	return s
}

// WithAllowedOrigins restricts which browser origins may open the event
// stream. "*" allows any origin; an empty list keeps same-origin only.
func (s *Server) WithAllowedOrigins(origins []string) *Server {
	if len(origins) == 0 {
		return s
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := allowed["*"]; ok {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
	return s
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(r.Context())
	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sessionToResponse(sess.ID(), sess.Snapshot()))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess.ID(), sess.Snapshot()))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := bindPath[string](r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := s.sessions.Delete(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMode handles PUT /sessions/{id}/mode.
func (s *Server) SetMode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req ModeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	m, ok := mode.Parse(req.Mode)
	if !ok {
		s.handleDomainError(w, fmt.Errorf("%w: %q", domain.ErrInvalidFilterMode, req.Mode))
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.SetMode(r.Context(), m) })
}

// SetDistance handles PUT /sessions/{id}/distance.
func (s *Server) SetDistance(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req DistanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.SetDistance(r.Context(), req.Distance) })
}

// SetCoordinate handles PUT /sessions/{id}/coordinates/{axis}.
func (s *Server) SetCoordinate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	axis, err := bindPath[string](r, "axis")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	var req CoordinateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.respond(w, sess, func() (domsession.State, error) {
		return sess.SetCoordinate(r.Context(), filter.Axis(axis), req.Value)
	})
}

// SetPriceRange handles PUT /sessions/{id}/price.
func (s *Server) SetPriceRange(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req PriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := sess.SetPriceRange(r.Context(), req.Min, req.Max)
	writeJSON(w, http.StatusOK, sessionToResponse(sess.ID(), st))
}

// SetTerm handles PUT /sessions/{id}/term.
func (s *Server) SetTerm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TermRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := sess.SetTerm(r.Context(), req.Term)
	writeJSON(w, http.StatusOK, sessionToResponse(sess.ID(), st))
}

// Search handles POST /sessions/{id}/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess.ID(), sess.Search(r.Context())))
}

// GotoPage handles POST /sessions/{id}/pages/{page}.
func (s *Server) GotoPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	page, err := bindPath[int](r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.Goto(r.Context(), page) })
}

// NextPage handles POST /sessions/{id}/next.
func (s *Server) NextPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.Next(r.Context()) })
}

// PreviousPage handles POST /sessions/{id}/previous.
func (s *Server) PreviousPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.Previous(r.Context()) })
}

// FastForward handles POST /sessions/{id}/fast-forward.
func (s *Server) FastForward(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.FastForward(r.Context()) })
}

// SubmitImage handles POST /sessions/{id}/image with a multipart "image" part.
func (s *Server) SubmitImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(s.maxImageBytes)+multipartOverhead)
	if err := r.ParseMultipartForm(int64(s.maxImageBytes)); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeImageTooLarge(w)
			return
		}
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidImage, "expected multipart/form-data upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidImage, "missing image file")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, int64(s.maxImageBytes)+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidImage, "failed to read image")
		return
	}
	if len(data) > s.maxImageBytes {
		s.writeImageTooLarge(w)
		return
	}
	img, err := upload.New(header.Filename, data, s.maxImageBytes)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionToResponse(sess.ID(), sess.SubmitImage(r.Context(), img)))
}

func (s *Server) writeImageTooLarge(w http.ResponseWriter) {
	writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeInvalidImage,
		fmt.Sprintf("image exceeds limit of %d bytes", s.maxImageBytes))
}

// ThumbnailFailed handles POST /sessions/{id}/thumbnails/{restaurantID}/error.
func (s *Server) ThumbnailFailed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, err := bindPath[int64](r, "restaurantID")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	s.respond(w, sess, func() (domsession.State, error) { return sess.ThumbnailFailed(id) })
}

// GetRestaurant handles GET /restaurants/{id}.
func (s *Server) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := bindPath[int64](r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	d, err := s.details.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err, detailuc.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, detailToResponse(&d))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*sessionuc.Session, bool) {
	id, err := bindPath[string](r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return sess, true
}

// respond writes the state an operation produced, or its error.
func (s *Server) respond(w http.ResponseWriter, sess *sessionuc.Session, op func() (domsession.State, error)) {
	st, err := op()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess.ID(), st))
}

// bindPath binds a simple-style path parameter into T.
func bindPath[T any](r *http.Request, name string) (T, error) {
	var v T
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return v, fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrRestaurantNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidNumber,
		domain.ErrInvalidFilterMode,
		domain.ErrInvalidAxis,
		domain.ErrPageOutOfRange,
		domain.ErrInvalidImage,
		domain.ErrBackendUnavailable,
		domain.ErrBackendStatus,
		domain.ErrMalformedResponse,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.writeDomainError(w, err, safeDomainMessage(err))
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error, msg string) {
	s.logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
