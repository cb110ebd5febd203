package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/redis"
)

// ArtifactHandler serves generated CSV artifacts from blob storage, with a
// Redis read-through in front when Redis is enabled.
type ArtifactHandler struct {
	storage      contracts.Storage
	cache        *redis.Cache
	outputPrefix string
	logger       *logger.Logger
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(store contracts.Storage, cache *redis.Cache, outputPrefix string, log *logger.Logger) *ArtifactHandler {
	return &ArtifactHandler{
		storage:      store,
		cache:        cache,
		outputPrefix: outputPrefix,
		logger:       log,
	}
}

// GetRRG returns the rotation series for one subject
// GET /api/rrg/{kind}/{subject}
func (h *ArtifactHandler) GetRRG(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, ok := parseKind(vars["kind"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid kind (valid: stock, sector)")
		return
	}

	subject := strings.ToUpper(vars["subject"])
	if subject == "" {
		respondError(w, http.StatusBadRequest, "Missing subject")
		return
	}

	path := fmt.Sprintf("%s%s/%s.csv", h.outputPrefix, kind, subject)
	h.serveCSV(w, r, path)
}

// GetScanner returns the ranked summary for a kind
// GET /api/scanner/{kind}
func (h *ArtifactHandler) GetScanner(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKind(mux.Vars(r)["kind"])
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid kind (valid: stock, sector)")
		return
	}

	path := fmt.Sprintf("%sscanner_%ss.csv", h.outputPrefix, kind)
	h.serveCSV(w, r, path)
}

func (h *ArtifactHandler) serveCSV(w http.ResponseWriter, r *http.Request, path string) {
	ctx := r.Context()
	key := redis.ArtifactKey(path)

	if h.cache != nil {
		if body, hit, err := h.cache.Get(ctx, key); err == nil && hit {
			respondCSV(w, body)
			return
		}
	}

	body, err := h.storage.DownloadText(ctx, path)
	if err != nil {
		var notFound *contracts.SubjectNotFoundError
		if errors.As(err, &notFound) {
			respondError(w, http.StatusNotFound, "Artifact not found")
			return
		}
		h.logger.WithError(err).WithField("path", path).Error("Failed to download artifact")
		respondError(w, http.StatusBadGateway, "Storage error")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, body, redis.TTLMedium); err != nil {
			h.logger.WithError(err).Debug("Failed to cache artifact")
		}
	}

	respondCSV(w, body)
}

func parseKind(raw string) (contracts.SubjectKind, bool) {
	switch raw {
	case "stock", "stocks":
		return contracts.KindStock, true
	case "sector", "sectors":
		return contracts.KindSector, true
	default:
		return "", false
	}
}

func respondCSV(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body)
}
