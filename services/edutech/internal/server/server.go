package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"edutechai/internal/ratelimit"
	"edutechai/internal/util"
	"edutechai/services/edutech/internal/app"
)

const defaultMaxUploadBytes = 50 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	CORSOrigins    []string
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64

	// Redis enables per-IP limits on register and login. Nil disables them.
	Redis                      redis.Scripter
	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
}

// Server exposes the textbook, tutoring and account endpoints.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	validate       *validator.Validate
	corsOrigins    []string
	trusted        *util.TrustedProxies
	maxUploadBytes int64
	registerLimit  *ratelimit.FixedWindowLimiter
	loginLimit     *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("server requires an app")
	}
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		validate:       newValidator(),
		corsOrigins:    cfg.CORSOrigins,
		trusted:        cfg.TrustedProxies,
		maxUploadBytes: maxUploadBytes,
	}
	if cfg.Redis != nil {
		var err error
		if cfg.RegisterRateLimitPerMinute > 0 {
			s.registerLimit, err = ratelimit.NewFixedWindowLimiter(cfg.Redis, "edutech:ratelimit:register", cfg.RegisterRateLimitPerMinute, time.Minute)
			if err != nil {
				return nil, fmt.Errorf("register rate limiter: %w", err)
			}
		}
		if cfg.LoginRateLimitPerMinute > 0 {
			s.loginLimit, err = ratelimit.NewFixedWindowLimiter(cfg.Redis, "edutech:ratelimit:login", cfg.LoginRateLimitPerMinute, time.Minute)
			if err != nil {
				return nil, fmt.Errorf("login rate limiter: %w", err)
			}
		}
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("edutech", util.WithSecurityHeaders(util.WithCORS(s.corsOrigins, s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/check-gemini", s.handleCheckCompletion)

	// textbooks
	s.mux.HandleFunc("/upload-textbook", s.handleUpload)
	s.mux.HandleFunc("/textbooks", s.handleListTextbooks)
	s.mux.HandleFunc("/textbook/", s.handleTextbookByID)

	// tutoring
	s.mux.HandleFunc("/ask-question", s.handleAskQuestion)
	s.mux.HandleFunc("/explain-answer", s.handleExplainAnswer)
	s.mux.HandleFunc("/generate-lecture", s.handleGenerateLecture)
	s.mux.HandleFunc("/conversations/", s.handleConversations)

	// accounts
	s.mux.Handle("/register", s.withRateLimit(s.registerLimit, s.handleRegister))
	s.mux.Handle("/login", s.withRateLimit(s.loginLimit, s.handleLogin))
	s.mux.HandleFunc("/check-auth", s.handleCheckAuth)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Backend is running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Ping(r.Context()); err != nil {
		util.LoggerFromContext(r.Context()).Warn("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}

// handleCheckCompletion always answers 200; failures are reported in the
// status text.
func (s *Server) handleCheckCompletion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	text, err := s.app.CheckCompletion(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "Error: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": text})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	tb, err := s.app.IngestTextbook(r.Context(), header.Filename, data, r.URL.Query().Get("user_id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Textbook uploaded successfully",
		"textbook_id": tb.ID,
		"filename":    tb.Filename,
		"page_count":  tb.PageCount,
	})
}

func (s *Server) handleListTextbooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	books, err := s.app.ListTextbooks(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"textbooks": books})
}

// /textbook/{id}, /textbook/{id}/pdf or /textbook/{id}/ingest-state
func (s *Server) handleTextbookByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/textbook/")
	parts := strings.SplitN(path, "/", 2)
	id := parts[0]
	if id == "" {
		notFound(w, "not found")
		return
	}
	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		switch parts[1] {
		case "pdf":
			s.handleTextbookPDF(w, r, id)
		case "ingest-state":
			s.handleIngestState(w, r, id)
		default:
			notFound(w, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		tb, err := s.app.GetTextbook(r.Context(), id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tb)
	case http.MethodDelete:
		if err := s.app.DeleteTextbook(r.Context(), id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message":     "Textbook deleted successfully",
			"textbook_id": id,
		})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTextbookPDF(w http.ResponseWriter, r *http.Request, id string) {
	_, data, err := s.app.TextbookFile(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	util.AllowFraming(w, s.corsOrigins)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleIngestState(w http.ResponseWriter, r *http.Request, id string) {
	state, err := s.app.IngestStatus(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"textbook_id": id, "ingest_state": string(state)})
}

type askRequest struct {
	TextbookID string `json:"textbook_id" validate:"required"`
	Question   string `json:"question" validate:"required"`
	UserID     string `json:"user_id"`
}

func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	answer, err := s.app.AskQuestion(r.Context(), req.TextbookID, req.Question, req.UserID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

type explainRequest struct {
	TextbookID string `json:"textbook_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Question   string `json:"question"`
}

func (s *Server) handleExplainAnswer(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	explanation, err := s.app.ExplainAnswer(r.Context(), req.TextbookID, req.Question, req.Answer)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, explanation)
}

type lectureRequest struct {
	TextbookID string `json:"textbook_id" validate:"required"`
	Topic      string `json:"topic" validate:"required"`
	Chapter    string `json:"chapter"`
	UserID     string `json:"user_id"`
}

func (s *Server) handleGenerateLecture(w http.ResponseWriter, r *http.Request) {
	var req lectureRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	lecture, err := s.app.GenerateLecture(r.Context(), req.TextbookID, req.Topic, req.Chapter, req.UserID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lecture)
}

// /conversations/{textbook_id}
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if id == "" || strings.Contains(id, "/") {
		notFound(w, "not found")
		return
	}
	conversations, err := s.app.ListConversations(r.Context(), id, r.URL.Query().Get("user_id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
	Name    string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	sess, err := s.app.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "User registered successfully",
		UserID:  sess.User.ID,
		Token:   sess.Token,
		Name:    sess.User.Name,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodePost(w, r, &req) {
		return
	}
	sess, err := s.app.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "Login successful",
		UserID:  sess.User.ID,
		Token:   sess.Token,
		Name:    sess.User.Name,
	})
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	ok, err := s.app.CheckAuth(r.Context(), token)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": ok})
}

func (s *Server) withRateLimit(limiter *ratelimit.FixedWindowLimiter, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !limiter.Allow(r.Context(), util.ClientIP(r, s.trusted)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	})
}

// decodePost enforces POST, decodes a JSON body into dst and validates it.
// It writes the error response itself and reports whether to continue.
func (s *Server) decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return false
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field())
	}
	return strings.Join(fields, ", ") + " required"
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
