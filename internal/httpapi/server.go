package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memd/internal/resource"
	"memd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Allocate(componentID string, sizeBytes int64, priority int) error
	Deallocate(componentID string) error
	Touch(componentID string) error
	CachePut(key string, value any, importance float64) error
	CacheGet(key string) (any, bool)
	PredictiveOptimization() types.PredictionResponse
	Status() types.StatusResponse
	Stats() types.StatsResponse
	ListComponents() []types.Component
	Ready() bool
}

const defaultPriority = 5
const defaultImportance = 0.5

// NewMux builds the router: /allocate, /deallocate, /touch, /cache/{key},
// /optimize, /status, /stats, /components, /healthz, /readyz, /metrics.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(AccessLog)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/allocate", func(w http.ResponseWriter, r *http.Request) {
		var req types.AllocateRequest
		if !decodeJSON(w, r, &req) {
			countAllocation("invalid")
			return
		}
		if req.Priority == 0 {
			req.Priority = defaultPriority
		}
		if err := svc.Allocate(req.ComponentID, req.SizeBytes, req.Priority); err != nil {
			switch {
			case resource.IsInvalidArgument(err):
				countAllocation("invalid")
			case resource.IsCapacityExceeded(err):
				countAllocation("capacity")
			default:
				countAllocation("error")
			}
			writeServiceError(w, err)
			return
		}
		countAllocation("ok")
		writeJSON(w, svc.Status())
	})

	r.Post("/deallocate", func(w http.ResponseWriter, r *http.Request) {
		var req types.DeallocateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.Deallocate(req.ComponentID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, svc.Status())
	})

	r.Post("/touch", func(w http.ResponseWriter, r *http.Request) {
		var req types.DeallocateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.Touch(req.ComponentID); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Put("/cache/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		var req types.CachePutRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		importance := defaultImportance
		if req.Importance != nil {
			importance = *req.Importance
		}
		if err := svc.CachePut(key, req.Value, importance); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/cache/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		v, ok := svc.CacheGet(key)
		if !ok {
			countCacheResult("miss")
			writeJSONError(w, http.StatusNotFound, "cache miss: "+key)
			return
		}
		countCacheResult("hit")
		writeJSON(w, types.CacheGetResponse{Key: key, Value: rawValue(v)})
	})

	r.Post("/optimize", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.PredictiveOptimization())
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Stats())
	})

	r.Get("/components", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ComponentsResponse{Components: svc.ListComponents()})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unconfigured"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces the content type and body limit, then decodes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeServiceError maps manager error kinds to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case resource.IsInvalidArgument(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case resource.IsUnknownComponent(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case resource.IsCapacityExceeded(err):
		writeJSONError(w, http.StatusInsufficientStorage, err.Error())
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// rawValue normalizes a cached value back into a JSON payload. Values stored
// through the HTTP API are raw JSON already; anything else is re-encoded.
func rawValue(v any) json.RawMessage {
	switch x := v.(type) {
	case json.RawMessage:
		return x
	case []byte:
		return json.RawMessage(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return json.RawMessage(`null`)
		}
		return b
	}
}
