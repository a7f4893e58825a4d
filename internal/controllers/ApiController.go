package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"net/url"
	"sensordigest/internal/models"
	"sensordigest/internal/providers"
	"sensordigest/internal/scheduler/interfaces"
	"sensordigest/internal/services"
	"strings"
	"time"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	pipeline  services.PipelineServiceInterface
	scheduler interfaces.SchedulerInterface
	cache     providers.CacheProviderInterface
	clock     func() time.Time
}

func NewApiController(logger providers.Logger, pipeline services.PipelineServiceInterface, scheduler interfaces.SchedulerInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		pipeline:  pipeline,
		scheduler: scheduler,
		cache:     cache,
		clock:     time.Now,
	}
}

// readPayload merges query and form values. A JSON body is accepted as well.
func (ac *ApiController) readPayload(w http.ResponseWriter, r *http.Request) *models.IngestPayload {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	logType := providers.GetLogTypeByRequestType(r.Method)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload models.IngestPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			ac.logger.Warnf(logType, "Unreadable JSON body from %s: %s", r.RemoteAddr, err)
		}
		query := models.NewIngestPayload(r.URL.Query())
		if payload.Name == "" {
			payload.Name = query.Name
		}
		if payload.Date == "" {
			payload.Date = query.Date
		}
		return &payload
	}

	if err := r.ParseForm(); err != nil {
		ac.logger.Warnf(logType, "Unreadable form from %s: %s", r.RemoteAddr, err)
	}
	values := r.Form
	if values == nil {
		values = url.Values{}
	}
	return models.NewIngestPayload(values)
}

// Exec is the sensor ingest entrypoint. It always answers 200 with a text body.
func (ac *ApiController) Exec(w http.ResponseWriter, r *http.Request) {
	payload := ac.readPayload(w, r)
	ac.logger.Debugf(providers.GetLogTypeByRequestType(r.Method), "Ingest %q from %s", payload.Name, r.RemoteAddr)

	ack := ac.pipeline.Ingest(r.Context(), payload, ac.clock())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ack))
}

// Sweep triggers the timer path by hand and returns its result.
func (ac *ApiController) Sweep(w http.ResponseWriter, r *http.Request) {
	result := ac.scheduler.Sweep(r.Context())

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write(gson)
}

// Preview shows the digest body one subscriber would receive.
func (ac *ApiController) Preview(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// keyed by revision so an ingest or sweep retires older bodies
	cacheKey := fmt.Sprintf("preview:%d:%s", ac.pipeline.Revision(), email)
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeHTML(w, data)
		return
	}

	body, ok, err := ac.pipeline.Preview(email)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Preview for %s failed: %s", email, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	ac.cache.Set(cacheKey, []byte(body))
	writeHTML(w, []byte(body))
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
