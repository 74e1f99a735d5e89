package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shehryarbajwa/cf-calendar-api/internal/browser"
	"github.com/shehryarbajwa/cf-calendar-api/internal/cache"
	"github.com/shehryarbajwa/cf-calendar-api/internal/retry"
	"github.com/shehryarbajwa/cf-calendar-api/internal/scraper"
	"github.com/shehryarbajwa/cf-calendar-api/pkg/models"
)

// Scraper extracts contribution data for one username.
type Scraper interface {
	Extract(ctx context.Context, username string) (models.ScrapeResult, error)
}

// Handler composes cache, retry and scraping for the calendar endpoints.
type Handler struct {
	scraper  Scraper
	cache    *cache.Cache[models.ScrapeResult]
	retrier  *retry.Controller
	sessions *browser.Manager
	log      *zap.SugaredLogger

	// flights collapses concurrent cache misses for the same username into
	// one extraction.
	flights singleflight.Group
}

// NewHandler creates the HTTP handler set.
func NewHandler(s Scraper, c *cache.Cache[models.ScrapeResult], retrier *retry.Controller, sessions *browser.Manager, log *zap.SugaredLogger) *Handler {
	return &Handler{
		scraper:  s,
		cache:    c,
		retrier:  retrier,
		sessions: sessions,
		log:      log,
	}
}

// GetCalendar handles GET /user/{username} and GET /calendar/{username}.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if result, ok := h.cache.Get(username); ok {
		h.respondResult(w, result)
		return
	}

	v, err, _ := h.flights.Do(username, func() (interface{}, error) {
		return retry.Do(r.Context(), h.retrier, func(ctx context.Context) (models.ScrapeResult, error) {
			result, err := h.scraper.Extract(ctx, username)
			if errors.Is(err, scraper.ErrNotFound) {
				// Deterministic absence, retrying cannot help.
				return result, retry.Permanent(err)
			}
			return result, err
		})
	})
	if err != nil {
		h.respondError(w, username, err)
		return
	}

	result := v.(models.ScrapeResult)
	h.cache.Put(username, result)
	h.respondResult(w, result)
}

func (h *Handler) respondResult(w http.ResponseWriter, result models.ScrapeResult) {
	contributions := result.Records
	if contributions == nil {
		contributions = []models.ContributionRecord{}
	}
	writeJSON(w, http.StatusOK, models.CalendarResponse{
		Contributions: contributions,
		Message:       "User is done !",
		Success:       true,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, username string, err error) {
	if errors.Is(err, scraper.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{
			Message: err.Error(),
			Success: false,
		})
		return
	}

	// Details stay in the log; the response body is deliberately generic.
	h.log.Errorw("scrape failed", "username", username, "error", err)
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Message: "Internal Server Error",
		Success: false,
	})
}

// Index handles GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Hey Devs, Codeforces subendpoint is Working !",
		"examples": map[string]string{
			"text": "Hit the url below, replacing the username with any codeforces handle",
			"url":  "/calendar/{username}",
		},
		"success": true,
	})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"browserRunning": h.sessions.Started(),
		"cachedEntries":  h.cache.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
