package executor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/watchdock/agent/internal/models"
)

var secretPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// HTTPConfig is the TypeConfig blob for API monitors.
type HTTPConfig struct {
	URL     string            `json:"url"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// TimeoutSeconds caps the request; exceeding it classifies the result
	// as TIMEOUT so the pipeline can retry.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// DegradedLatencyMs marks slow-but-successful responses DEGRADED.
	DegradedLatencyMs float64 `json:"degraded_latency_ms,omitempty"`
}

// HTTPExecutor checks API monitors. 2xx/3xx responses are UP, anything
// else is DOWN, and a deadline hit is a TIMEOUT.
type HTTPExecutor struct {
	// Client is optional; a per-request client with the configured timeout
	// is built when nil.
	Client *http.Client
}

func (e *HTTPExecutor) Execute(ctx context.Context, monitor *models.Monitor, ts int64) Result {
	var conf HTTPConfig

	if err := json.Unmarshal([]byte(monitor.TypeConfig), &conf); err != nil {
		return Result{
			Status: models.StatusDown,
			Type:   models.DataPointTypeRealtime,
			Err:    err,
		}
	}

	timeout := 10 * time.Second

	if conf.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.TimeoutSeconds) * time.Second
	}

	client := e.Client

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	method := conf.Method

	if method == "" {
		method = http.MethodGet
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, resolveSecrets(conf.URL), nil)

	if err != nil {
		return Result{
			Status: models.StatusDown,
			Type:   models.DataPointTypeRealtime,
			Err:    err,
		}
	}

	req.Header.Set("User-Agent", "watchdock-agent/1.0")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")

	for k, v := range conf.Headers {
		req.Header.Set(k, resolveSecrets(v))
	}

	start := time.Now()
	resp, err := client.Do(req)
	latency := float64(time.Since(start).Milliseconds())

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Result{
				Status:  models.StatusDown,
				Latency: latency,
				Type:    models.DataPointTypeTimeout,
				Err:     err,
			}
		}

		return Result{
			Status: models.StatusDown,
			Type:   models.DataPointTypeRealtime,
			Err:    err,
		}
	}

	resp.Body.Close()

	status := models.StatusDown

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		status = models.StatusUp

		if conf.DegradedLatencyMs > 0 && latency > conf.DegradedLatencyMs {
			status = models.StatusDegraded
		}
	}

	return Result{
		Status:  status,
		Latency: latency,
		Type:    models.DataPointTypeRealtime,
	}
}

// resolveSecrets substitutes ${NAME} references from the environment the
// scheduler materializes before each pass.
func resolveSecrets(s string) string {
	return secretPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := secretPattern.FindStringSubmatch(match)[1]

		if v, ok := os.LookupEnv(name); ok {
			return v
		}

		return match
	})
}
