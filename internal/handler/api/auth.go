package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openexam/examtrail/internal/auth"
	"github.com/openexam/examtrail/internal/middleware"
	"github.com/openexam/examtrail/internal/model"
	"github.com/openexam/examtrail/internal/store"
)

type signupRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	FullName   string  `json:"full_name"`
	PracticeID *string `json:"practice_id"`
}

type loginRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	PracticeID *string `json:"practice_id"`
}

// userProfile is the wire shape of a user returned by the auth endpoints.
func userProfile(u store.User) map[string]any {
	profile := map[string]any{
		"id":        u.PublicID,
		"email":     u.Email,
		"full_name": u.FullName,
		"org_tag":   u.OrgTag,
		"admin":     u.IsAdmin,
	}
	if u.PracticeID.Valid {
		profile["practice_id"] = u.PracticeID.String
	} else {
		profile["practice_id"] = nil
	}
	return profile
}

// Signup handles POST /auth/signup. New accounts are tagged with an
// organization classification derived from the email address.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	switch {
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	case len(req.Password) < 8:
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	case req.FullName == "":
		writeError(w, http.StatusBadRequest, "full_name is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	orgTag := model.ClassifyOrganization(req.Email, h.cfg.AdminEmails, h.cfg.OrgDomain, h.cfg.OrgTag)
	isAdmin := orgTag == model.OrgTagAdmin

	now := time.Now().UTC()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		PublicID:     uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		OrgTag:       orgTag,
		IsAdmin:      isAdmin,
		PracticeID:   nullStringFromPtr(req.PracticeID),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		h.logger.Error("failed to create user", "email", req.Email, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := auth.MintToken(h.cfg.JWTSecret, user.PublicID, user.Email, user.FullName, user.OrgTag, user.IsAdmin)
	if err != nil {
		h.logger.Error("failed to mint token", "user_id", user.PublicID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user signed up", "user_id", user.PublicID, "org_tag", user.OrgTag)
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"token":   token,
		"user":    userProfile(user),
	})
}

// Login handles POST /auth/login behind IP rate limiting and account
// lockout. Credential failures are indistinguishable on the wire.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if !h.protection.CheckIPRateLimit(ip) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, slow down")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if h.protection.IsAccountLocked(req.Email) {
		h.logger.Warn("login attempt on locked account", "email", req.Email, "ip", ip)
		writeError(w, http.StatusTooManyRequests, "account temporarily locked, try again later")
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.protection.RecordFailure(req.Email)
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.logger.Error("failed to verify password", "user_id", user.PublicID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		h.protection.RecordFailure(req.Email)
		h.logger.Warn("failed login", "email", req.Email, "ip", ip)
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	h.protection.RecordSuccess(req.Email)

	// A login from a practice session carries the current practice exam
	// id; keep the stored value up to date.
	if req.PracticeID != nil {
		if err := h.queries.UpdateUserPracticeID(r.Context(), store.UpdateUserPracticeIDParams{
			PracticeID: nullStringFromPtr(req.PracticeID),
			UpdatedAt:  time.Now().UTC(),
			ID:         user.ID,
		}); err != nil {
			h.logger.Error("failed to update practice id on login", "user_id", user.PublicID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		user.PracticeID = nullStringFromPtr(req.PracticeID)
	}

	token, err := auth.MintToken(h.cfg.JWTSecret, user.PublicID, user.Email, user.FullName, user.OrgTag, user.IsAdmin)
	if err != nil {
		h.logger.Error("failed to mint token", "user_id", user.PublicID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("user logged in", "user_id", user.PublicID)
	writeSuccess(w, map[string]any{
		"token": token,
		"user":  userProfile(user),
	})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// ResetPassword handles POST /auth/reset-password. The identifier must
// match an existing account.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if len(req.NewPassword) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "no account with this email")
			return
		}
		h.logger.Error("failed to look up user", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now().UTC(),
		ID:           user.ID,
	}); err != nil {
		h.logger.Error("failed to update password", "user_id", user.PublicID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.logger.Info("password reset", "user_id", user.PublicID)
	writeSuccess(w, map[string]any{"message": "password updated"})
}

// UserInfo handles GET /auth/user, returning the profile for the
// authenticated identity.
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Identity(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}

	user, err := h.queries.GetUserByPublicID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to look up user", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeSuccess(w, map[string]any{"user": userProfile(user)})
}

// GetPracticeID handles GET /auth/practice-id.
func (h *Handler) GetPracticeID(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Identity(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}

	user, err := h.queries.GetUserByPublicID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to look up user", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var practiceID any
	if user.PracticeID.Valid {
		practiceID = user.PracticeID.String
	}
	writeSuccess(w, map[string]any{"practice_id": practiceID})
}

type practiceIDRequest struct {
	PracticeID *string `json:"practice_id"`
}

// UpdatePracticeID handles PUT /auth/practice-id. A null practice_id
// clears the stored value.
func (h *Handler) UpdatePracticeID(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Identity(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing Authorization header")
		return
	}

	var req practiceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := h.queries.GetUserByPublicID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to look up user", "user_id", claims.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.queries.UpdateUserPracticeID(r.Context(), store.UpdateUserPracticeIDParams{
		PracticeID: nullStringFromPtr(req.PracticeID),
		UpdatedAt:  time.Now().UTC(),
		ID:         user.ID,
	}); err != nil {
		h.logger.Error("failed to update practice id", "user_id", user.PublicID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var practiceID any
	if req.PracticeID != nil {
		practiceID = *req.PracticeID
	}
	writeSuccess(w, map[string]any{"practice_id": practiceID})
}

// isUniqueViolation reports whether err is a SQLite unique constraint
// failure. Matched by message so both the runtime and test drivers are
// covered.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
