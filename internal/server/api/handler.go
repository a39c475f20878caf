package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"azure-watch/updates/internal/archive"
	"azure-watch/updates/internal/feed"
	"azure-watch/updates/internal/pipeline"
	"azure-watch/updates/internal/server/pagination"
)

const defaultLimit = 100
const maxLimit = 1000
const dateOnlyFormat = "2006-01-02"

// ArchiveResponse is the payload of the history endpoint.
type ArchiveResponse struct {
	Items      []archive.Row `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// UpdatesHandler holds dependencies for the API handlers.
type UpdatesHandler struct {
	agg  *pipeline.Aggregator
	repo archive.Repository // nil when the archive is disabled
}

// NewUpdatesHandler creates a new handler instance. repo may be nil.
func NewUpdatesHandler(agg *pipeline.Aggregator, repo archive.Repository) *UpdatesHandler {
	return &UpdatesHandler{agg: agg, repo: repo}
}

// GetUpdates serves the live pipeline result: fetch (through the TTL
// cache), classify, dedup, sort, filter.
func (h *UpdatesHandler) GetUpdates(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	query := r.URL.Query()

	f := pipeline.Filter{Query: query.Get("q")}
	for _, s := range query["status"] {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Statuses = append(f.Statuses, part)
			}
		}
	}

	var err error
	if f.From, err = parseWindowTime(query.Get("from"), false); err != nil {
		log.Warn().Err(err).Str("from", query.Get("from")).Msg("Invalid 'from' parameter")
		http.Error(w, "Invalid 'from' parameter: use RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if f.To, err = parseWindowTime(query.Get("to"), true); err != nil {
		log.Warn().Err(err).Str("to", query.Get("to")).Msg("Invalid 'to' parameter")
		http.Error(w, "Invalid 'to' parameter: use RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		log.Warn().Err(err).Str("limit", query.Get("limit")).Msg("Invalid 'limit' parameter")
		http.Error(w, fmt.Sprintf("Invalid 'limit' parameter: must be between 1 and %d", maxLimit), http.StatusBadRequest)
		return
	}

	result, err := h.agg.Run(r.Context(), f)
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}

	if len(result.Items) > limit {
		result.Items = result.Items[:limit]
	}
	writeJSON(w, r, http.StatusOK, result)
}

// GetFacets serves the available status labels and observed date range
// for building filter controls.
func (h *UpdatesHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.agg.Facets(r.Context())
	if err != nil {
		h.writeFetchError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, facets)
}

// Refresh invalidates the cached payload; the next request refetches.
func (h *UpdatesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.agg.Refresh()
	hlog.FromRequest(r).Info().Str("source", h.agg.SourceName()).Msg("Cache invalidated on request")
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "cache invalidated"})
}

// GetArchive serves persisted updates from past fetch cycles,
// newest-first with cursor pagination.
func (h *UpdatesHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	if h.repo == nil {
		http.Error(w, "Archive is not configured", http.StatusNotFound)
		return
	}

	query := r.URL.Query()

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		log.Warn().Err(err).Str("limit", query.Get("limit")).Msg("Invalid 'limit' parameter")
		http.Error(w, fmt.Sprintf("Invalid 'limit' parameter: must be between 1 and %d", maxLimit), http.StatusBadRequest)
		return
	}

	var since *time.Time
	var cursorTimestamp *time.Time
	var cursorID *int64

	if cursorStr := query.Get("cursor"); cursorStr != "" {
		ts, id, err := pagination.DecodeCursor(cursorStr)
		if err != nil {
			log.Warn().Err(err).Str("cursor", cursorStr).Msg("Invalid 'cursor' parameter")
			http.Error(w, "Invalid 'cursor' parameter", http.StatusBadRequest)
			return
		}
		cursorTimestamp = &ts
		cursorID = &id
	} else if sinceStr := query.Get("since"); sinceStr != "" {
		parsed, err := parseWindowTime(sinceStr, false)
		if err != nil {
			log.Warn().Err(err).Str("since", sinceStr).Msg("Invalid 'since' parameter")
			http.Error(w, "Invalid 'since' parameter: use RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		since = &parsed
	}

	rows, err := h.repo.FetchUpdates(r.Context(), limit+1, since, cursorTimestamp, cursorID) // Fetch one extra
	if err != nil {
		log.Error().Err(err).Msg("Error fetching archived updates from repository")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var nextCursor *string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		cursor := pagination.EncodeCursor(last.PublishedAt.UTC(), last.ID)
		nextCursor = &cursor
	}

	writeJSON(w, r, http.StatusOK, ArchiveResponse{Items: rows, NextCursor: nextCursor})
}

// writeFetchError maps the pipeline error taxonomy to HTTP statuses.
// Fetch failures halt the pass: no partial results are served.
func (h *UpdatesHandler) writeFetchError(w http.ResponseWriter, r *http.Request, err error) {
	log := hlog.FromRequest(r)

	var transport *feed.TransportError
	var render *feed.RenderEnvironmentError
	switch {
	case errors.As(err, &transport):
		log.Error().Err(err).Str("source", h.agg.SourceName()).Msg("Source fetch failed")
		writeJSON(w, r, http.StatusBadGateway, map[string]string{"error": transport.Error()})
	case errors.As(err, &render):
		log.Error().Err(err).Str("source", h.agg.SourceName()).Msg("Headless render failed")
		writeJSON(w, r, http.StatusBadGateway, map[string]string{
			"error": render.Error(),
			"hint":  render.Hint,
		})
	default:
		log.Error().Err(err).Str("source", h.agg.SourceName()).Msg("Pipeline pass failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if limit <= 0 || limit > maxLimit {
		return 0, fmt.Errorf("limit %d out of range", limit)
	}
	return limit, nil
}

// parseWindowTime accepts RFC3339 or a bare date. A bare date used as
// the upper bound extends to the end of that day so the window stays
// inclusive.
func parseWindowTime(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error marshaling JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error writing JSON response body")
	}
}
