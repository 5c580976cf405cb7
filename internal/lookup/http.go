package lookup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/your-org/imageflow/internal/metastore"
)

// HTTPHandler exposes the read-path REST endpoints.
type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
	router  chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	h := &HTTPHandler{
		service: service,
		logger:  logger,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.handleHealth)
	r.Head("/health", h.handleHealth)

	// Image keys may contain slashes, so both routes take a wildcard.
	r.Get("/meta/*", h.handleMeta)
	r.Head("/meta/*", h.handleMeta)
	r.Get("/img/*", h.handleImg)
	r.Head("/img/*", h.handleImg)

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"ok": true,
	})
}

func (h *HTTPHandler) handleMeta(w http.ResponseWriter, r *http.Request) {
	key := imageKey(r)
	if key == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing key")
		return
	}

	md, err := h.service.LookupMetadata(r.Context(), key)
	if err != nil {
		h.writeLookupError(w, r, key, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, md)
}

func (h *HTTPHandler) handleImg(w http.ResponseWriter, r *http.Request) {
	key := imageKey(r)
	if key == "" {
		h.writeError(w, r, http.StatusBadRequest, "missing key")
		return
	}

	target, err := h.service.LookupDelivery(r.Context(), key)
	if err != nil {
		h.writeLookupError(w, r, key, err)
		return
	}

	w.Header().Set("Location", target.URL)
	w.WriteHeader(http.StatusFound)
}

func (h *HTTPHandler) writeLookupError(w http.ResponseWriter, r *http.Request, key string, err error) {
	switch {
	case errors.Is(err, metastore.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, ErrResolution):
		h.logger.Error("delivery resolution failed", zap.String("key", key), zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal server error")
	default:
		h.logger.Error("metadata backend unavailable", zap.String("key", key), zap.Error(err))
		h.writeError(w, r, http.StatusBadGateway, "backend unavailable")
	}
}

func imageKey(r *http.Request) string {
	return strings.Trim(chi.URLParam(r, "*"), "/")
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("write response", zap.Error(err))
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, map[string]string{
		"error": msg,
	})
}
