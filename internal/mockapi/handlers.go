package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/venuebook/internal/mockapi/users"
)

const (
	maxJSONBody      = 64 << 10
	maxMultipartBody = 8 << 20
	minPasswordLen   = 8
)

// envelope is the body shape shared by the auth endpoints.
type envelope struct {
	Success bool                `json:"success"`
	Token   string              `json:"token,omitempty"`
	User    *profileJSON        `json:"user,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type profileJSON struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

func toProfile(u *users.User) *profileJSON {
	id, _ := strconv.Atoi(u.ID)
	return &profileJSON{
		ID:        id,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
	}
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Malformed request."})
		return
	}

	fieldErrs := map[string][]string{}
	if strings.TrimSpace(req.Email) == "" {
		fieldErrs["email"] = append(fieldErrs["email"], "The email field is required.")
	}
	if req.Password == "" {
		fieldErrs["password"] = append(fieldErrs["password"], "The password field is required.")
	}
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Errors: fieldErrs})
		return
	}

	u, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, envelope{Message: "Invalid credentials."})
		return
	}

	token, _, err := s.issuer.Issue(u.ID)
	if err != nil {
		s.logger.Error(r.Context(), "issue token", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Server error."})
		return
	}

	s.logger.Info(r.Context(), "user logged in", "user_id", u.ID, "fingerprint", req.Fingerprint)
	writeJSON(w, http.StatusOK, envelope{Success: true, Token: token, User: toProfile(u), Message: "Logged in."})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBody)
	if err := r.ParseMultipartForm(maxMultipartBody); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Message: "Malformed request."})
		return
	}

	in := users.NewUser{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
	}

	fieldErrs := validateRegistration(in, r.FormValue("password_confirmation"))
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: firstError(fieldErrs), Errors: fieldErrs})
		return
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		_ = file.Close()
		in.Avatar = "avatars/" + filepath.Base(header.Filename)
	}

	u, err := s.users.Register(r.Context(), in)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		fieldErrs := map[string][]string{"email": {"The email has already been taken."}}
		writeJSON(w, http.StatusUnprocessableEntity, envelope{Message: firstError(fieldErrs), Errors: fieldErrs})
		return
	case err != nil:
		s.logger.Error(r.Context(), "register user", "error", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: "Server error."})
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", u.ID, "fingerprint", r.FormValue("fingerprint"))
	writeJSON(w, http.StatusCreated, envelope{Success: true, User: toProfile(u), Message: "Registered."})
}

func validateRegistration(in users.NewUser, confirmation string) map[string][]string {
	errs := map[string][]string{}
	required := map[string]string{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"email":      in.Email,
		"password":   in.Password,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			errs[field] = append(errs[field], "The "+strings.ReplaceAll(field, "_", " ")+" field is required.")
		}
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		errs["email"] = append(errs["email"], "The email must be a valid email address.")
	}
	if in.Password != "" && len(in.Password) < minPasswordLen {
		errs["password"] = append(errs["password"], "The password must be at least 8 characters.")
	}
	if in.Password != confirmation {
		errs["password"] = append(errs["password"], "The password confirmation does not match.")
	}
	return errs
}

func firstError(errs map[string][]string) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if len(errs[f]) > 0 {
			return errs[f][0]
		}
	}
	return ""
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-r.Context().Done():
			return
		}
	}

	claims := claimsFrom(r.Context())
	u, err := s.users.Get(r.Context(), claims.Subject)
	if err != nil {
		unauthenticated(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": toProfile(u)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	s.revoked.Revoke(claims.ID, exp)

	s.logger.Info(r.Context(), "user logged out", "user_id", claims.Subject)
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logged out."})
}

func unauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, envelope{Message: "Unauthenticated."})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
