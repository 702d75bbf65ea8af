package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"activation-service/internal/domain"
	"activation-service/internal/domain/model"
	"activation-service/internal/usecase"
)

// Server is the public HTTP surface: code redemption, registration, login.
type Server struct {
	codes    usecase.CodeUseCase
	accounts usecase.AccountUseCase
	log      *zerolog.Logger
}

func NewServer(codes usecase.CodeUseCase, accounts usecase.AccountUseCase, logger *zerolog.Logger) *Server {
	return &Server{codes: codes, accounts: accounts, log: logger}
}

// Router builds the chi router with tracing and request logging attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/check_code", s.handleCheckCode)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Get("/api/username_exists", s.handleUsernameExists)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	tiers := make([]string, 0, len(model.Tiers))
	for _, t := range model.Tiers {
		tiers = append(tiers, string(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "active",
		"service":    "Activation API",
		"code_types": tiers,
	})
}

type checkCodeRequest struct {
	ActivationCode string `json:"activation_code"`
}

func (s *Server) handleCheckCode(w http.ResponseWriter, r *http.Request) {
	var req checkCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "no code provided")
		return
	}
	code := strings.TrimSpace(req.ActivationCode)
	if utf8.RuneCountInString(code) < model.MinCodeLength {
		writeError(w, http.StatusBadRequest, "code too short")
		return
	}

	res, err := s.codes.Redeem(r.Context(), code, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"code_type":  res.Tier,
		"expires_at": res.ExpiresAt,
	})
}

type registerRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	ActivationCode string `json:"activation_code"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.accounts.Register(r.Context(), strings.TrimSpace(req.Username), req.Password, strings.TrimSpace(req.ActivationCode), time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":     "success",
		"user_id":    res.UserID,
		"code_type":  res.Tier,
		"expires_at": res.ExpiresAt,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.accounts.Login(r.Context(), strings.TrimSpace(req.Username), req.Password, time.Now())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"user_id":    res.UserID,
		"active":     res.IsActive,
		"code_type":  res.Tier,
		"expires_at": res.ExpiresAt,
	})
}

func (s *Server) handleUsernameExists(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	exists, err := s.accounts.CheckUsernameExists(r.Context(), username)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exists": exists})
}

// writeDomainError maps typed business outcomes onto transport responses.
// Anything unrecognized is a storage-level failure and stays opaque.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		writeError(w, http.StatusNotFound, "invalid code")
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		writeError(w, http.StatusConflict, "code already used")
	case errors.Is(err, domain.ErrCodeExpired):
		writeError(w, http.StatusGone, "code expired")
	case errors.Is(err, domain.ErrCodeTooShort):
		writeError(w, http.StatusBadRequest, "code too short")
	case errors.Is(err, domain.ErrUsernameTooShort):
		writeError(w, http.StatusBadRequest, "username too short")
	case errors.Is(err, domain.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "password too short")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidTier):
		writeError(w, http.StatusBadRequest, "invalid argument")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": message})
}
