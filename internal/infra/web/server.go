package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"activation-service/internal/usecase"
)

// Server is the administrative surface: code issuance and listings behind
// basic auth, the HTML panel, and the Prometheus endpoint.
type Server struct {
	codes    usecase.CodeUseCase
	accounts usecase.AccountUseCase
	auth     *AuthManager
	username string
	password string
	log      *zerolog.Logger
}

func NewServer(
	codes usecase.CodeUseCase,
	accounts usecase.AccountUseCase,
	auth *AuthManager,
	adminUsername, adminPassword string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		codes:    codes,
		accounts: accounts,
		auth:     auth,
		username: adminUsername,
		password: adminPassword,
		log:      logger,
	}
}

// RegisterRoutes sets up the routing for the admin API and panel.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/admin", s.authMiddleware(panelHandler()))
	mux.Handle("/api/admin/add_code", s.authMiddleware(addCodeHandler(s.codes)))
	mux.Handle("/api/admin/list_codes", s.authMiddleware(listCodesHandler(s.codes)))
	mux.Handle("/api/admin/list_users", s.authMiddleware(listUsersHandler(s.accounts)))

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// authMiddleware accepts either a valid session token or basic-auth
// credentials. A successful basic-auth pass mints the session cookie so the
// panel's JS can call the admin API without replaying credentials.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.password == "" {
			s.log.Error().Msg("admin password is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		if _, err := s.auth.ParseFromRequest(r); err == nil {
			next.ServeHTTP(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !secureCompare(user, s.username) || !secureCompare(pass, s.password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="activation admin"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if _, err := s.auth.Mint(w); err != nil {
			s.log.Error().Err(err).Msg("failed to mint admin session")
		}
		next.ServeHTTP(w, r)
	})
}
