package mockapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/common"
	"github.com/dmitrijs2005/venuebook/internal/mockapi/auth"
	"github.com/gorilla/mux"
)

type ctxKey string

const claimsKey ctxKey = "claims"

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r
	if prefix := strings.TrimRight(s.cfg.PathPrefix, "/"); prefix != "" {
		api = r.PathPrefix(prefix).Subrouter()
	}
	api.HandleFunc("/user/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/user/register", s.handleRegister).Methods(http.MethodPost)

	authed := api.PathPrefix("/user").Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/profile", s.handleProfile).Methods(http.MethodGet)
	authed.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{Message: "Not found."})
	})
	return r
}

// requireToken rejects requests without a valid, unrevoked bearer token and
// puts the claims in the request context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			unauthenticated(w)
			return
		}

		claims, err := s.issuer.Parse(token)
		if err != nil || s.revoked.Revoked(claims.ID) {
			unauthenticated(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
