// Package httpapi exposes the ledger over HTTP. It trusts the X-User-ID
// header set by the authenticating gateway in front of it.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// UserIDHeader carries the verified caller identity
const UserIDHeader = "X-User-ID"

// RedemptionService redeems checkpoints and rewards
type RedemptionService interface {
	RedeemCheckpoint(ctx context.Context, userID, checkpointID string, lat, lng float64) (*entities.ScanResult, error)
	RedeemReward(ctx context.Context, userID, rewardID string) (*entities.RewardResult, error)
}

// LeaderboardService ranks users by points
type LeaderboardService interface {
	TopUsers(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

// ProfileService manages user accounts
type ProfileService interface {
	Register(ctx context.Context, reg interfaces.Registration) (*entities.User, error)
	GetProfile(ctx context.Context, userID string) (*entities.User, error)
	UpdateFavouriteTeam(ctx context.Context, userID, team string) error
	GetStatement(ctx context.Context, userID string) (*entities.Statement, error)
}

// CatalogService lists redeemable rewards
type CatalogService interface {
	ListActiveRewards(ctx context.Context) ([]*entities.Reward, error)
}

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// Handler provides HTTP handlers for the ledger API
type Handler struct {
	redemptions RedemptionService
	leaderboard LeaderboardService
	profiles    ProfileService
	catalog     CatalogService
	ready       ReadinessCheck
}

// NewHandler creates a new HTTP handler. A nil readiness check always reports ready.
func NewHandler(
	redemptions RedemptionService,
	leaderboard LeaderboardService,
	profiles ProfileService,
	catalog CatalogService,
	ready ReadinessCheck,
) *Handler {
	return &Handler{
		redemptions: redemptions,
		leaderboard: leaderboard,
		profiles:    profiles,
		catalog:     catalog,
		ready:       ready,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError describes a failed request by kind
type APIError struct {
	Kind    string         `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", h.Register)
		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Put("/favourite-team", h.UpdateFavouriteTeam)
			r.Get("/statement", h.GetStatement)
		})

		r.Post("/scans", h.RedeemCheckpoint)

		r.Get("/rewards", h.ListRewards)
		r.Post("/rewards/{rewardID}/redeem", h.RedeemReward)

		r.Get("/leaderboard", h.TopUsers)
	})

	return r
}

// requestLogger logs each request once it completes
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"requestID": middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

// writeSuccess writes a successful JSON response
func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError maps err to a status code and kind
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errInvalidRequest) {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Error: &APIError{Kind: kindInvalidRequest},
		})
		return
	}

	kind := entities.KindOf(err)
	if kind == "" {
		log.WithFields(log.Fields{
			"path":  r.URL.Path,
			"error": err,
		}).Error("Unclassified error from ledger")
		writeJSON(w, http.StatusInternalServerError, APIResponse{
			Error: &APIError{Kind: kindInternal},
		})
		return
	}

	status := StatusForKind(kind)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":  r.URL.Path,
			"kind":  kind,
			"error": err,
		}).Error("Ledger request failed")
	}

	writeJSON(w, status, APIResponse{
		Error: &APIError{
			Kind:    kind.String(),
			Details: entities.DetailsOf(err),
		},
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidRequest
	}
	return nil
}

func userID(r *http.Request) string {
	return r.Header.Get(UserIDHeader)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.ready(ctx); err != nil {
			log.WithError(err).Warn("Readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, APIResponse{
				Error: &APIError{Kind: entities.KindStoreUnavailable.String()},
			})
			return
		}
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}

type registerRequest struct {
	DisplayName   string `json:"display_name"`
	Email         string `json:"email"`
	FavouriteTeam string `json:"favourite_team"`
}

// Register creates the caller's account, or returns it if it exists
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.profiles.Register(r.Context(), interfaces.Registration{
		UserID:        userID(r),
		DisplayName:   req.DisplayName,
		Email:         req.Email,
		FavouriteTeam: req.FavouriteTeam,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, user)
}

// GetProfile returns the caller's account
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.profiles.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

type favouriteTeamRequest struct {
	FavouriteTeam string `json:"favourite_team"`
}

// UpdateFavouriteTeam changes the caller's favourite team
func (h *Handler) UpdateFavouriteTeam(w http.ResponseWriter, r *http.Request) {
	var req favouriteTeamRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.profiles.UpdateFavouriteTeam(r.Context(), userID(r), req.FavouriteTeam); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statementResponse struct {
	*entities.Statement
	Balanced bool `json:"balanced"`
}

// GetStatement returns the caller's receipts reconciled against the balance
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := h.profiles.GetStatement(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, statementResponse{
		Statement: statement,
		Balanced:  statement.Balanced(),
	})
}

type scanRequest struct {
	CheckpointID string   `json:"checkpoint_id"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type scanResponse struct {
	PointsAwarded int64 `json:"points_awarded"`
	TotalPoints   int64 `json:"total_points"`
}

// RedeemCheckpoint credits the caller for a scanned checkpoint
func (h *Handler) RedeemCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, r, errInvalidRequest)
		return
	}

	result, err := h.redemptions.RedeemCheckpoint(r.Context(), userID(r), req.CheckpointID, *req.Latitude, *req.Longitude)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, scanResponse{
		PointsAwarded: result.PointsAwarded,
		TotalPoints:   result.TotalPoints,
	})
}

// ListRewards returns the rewards that can currently be redeemed
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.catalog.ListActiveRewards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rewards == nil {
		rewards = []*entities.Reward{}
	}
	writeSuccess(w, http.StatusOK, rewards)
}

// RedeemReward spends the caller's points on a reward
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	rewardID := chi.URLParam(r, "rewardID")

	if _, err := h.redemptions.RedeemReward(r.Context(), userID(r), rewardID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TopUsers returns the leaderboard. A missing limit uses the default.
func (h *Handler) TopUsers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, r, errInvalidRequest)
			return
		}
		limit = l
	}

	entries, err := h.leaderboard.TopUsers(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*entities.LeaderboardEntry{}
	}
	writeSuccess(w, http.StatusOK, entries)
}
