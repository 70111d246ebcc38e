package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fr0stylo/relgraph/internal/observability"
)

type Config struct {
	Environment   string
	Server        ServerConfig
	Backend       BackendConfig
	Knowledge     KnowledgeConfig
	LLM           LLMConfig
	Events        EventsConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Port int
}

// BackendConfig is how front ends reach the query backend.
type BackendConfig struct {
	URL       string
	TimeoutMS int
	Port      int
}

// KnowledgeConfig drives the reference backend's relation store.
type KnowledgeConfig struct {
	DBPath        string
	LogTiming     bool
	RelationsFile string
}

type LLMConfig struct {
	OllamaURL      string
	Model          string
	APIKey         string
	MaxConcurrency int64
}

type EventsConfig struct {
	URL    string
	Token  string
	Secret string
}

type ObservabilityConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	OTLPTraceHeaders  map[string]string
	OTLPMetricHeaders map[string]string
	ServiceName       string
	ServiceVer        string
	SamplingRatio     float64
	MetricsConsole    bool
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("relgraph_env", "")
	v.SetDefault("app_env", "")
	v.SetDefault("go_env", "")
	v.SetDefault("relgraph_port", 8080)
	v.SetDefault("relgraph_backend_url", "http://127.0.0.1:5000")
	v.SetDefault("relgraph_backend_timeout_ms", 60000)
	v.SetDefault("relgraph_backend_port", 5000)
	v.SetDefault("relgraph_db_path", "data/relations")
	v.SetDefault("relgraph_db_timing", false)
	v.SetDefault("relgraph_relations_file", "relations.json")
	v.SetDefault("relgraph_ollama_url", "")
	v.SetDefault("relgraph_ollama_model", "llama3.2")
	v.SetDefault("relgraph_ollama_api_key", "")
	v.SetDefault("relgraph_ollama_max_concurrency", 2)
	v.SetDefault("relgraph_events_url", "")
	v.SetDefault("relgraph_events_token", "")
	v.SetDefault("relgraph_events_secret", "")
	v.SetDefault("relgraph_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_traces_headers", "")
	v.SetDefault("otel_exporter_otlp_metrics_headers", "")
	v.SetDefault("otel_service_name", "")
	v.SetDefault("relgraph_service_name", "relgraph")
	v.SetDefault("relgraph_version", "dev")
	v.SetDefault("otel_service_version", "")
	v.SetDefault("relgraph_otel_sampling_ratio", 1.0)
	v.SetDefault("relgraph_otel_metrics_console", false)

	env := resolveEnvironment(v)
	port := v.GetInt("relgraph_port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid RELGRAPH_PORT: %d", port)
	}
	backendPort := v.GetInt("relgraph_backend_port")
	if backendPort <= 0 || backendPort > 65535 {
		return Config{}, fmt.Errorf("invalid RELGRAPH_BACKEND_PORT: %d", backendPort)
	}

	backendURL := strings.TrimSpace(v.GetString("relgraph_backend_url"))
	if backendURL == "" {
		backendURL = "http://127.0.0.1:5000"
	}

	timeoutMS := v.GetInt("relgraph_backend_timeout_ms")
	if timeoutMS < 1000 {
		timeoutMS = 1000
	}
	if timeoutMS > 600000 {
		timeoutMS = 600000
	}

	maxConcurrency := v.GetInt64("relgraph_ollama_max_concurrency")
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if maxConcurrency > 64 {
		maxConcurrency = 64
	}

	samplingRatio := v.GetFloat64("relgraph_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	serviceName := strings.TrimSpace(v.GetString("otel_service_name"))
	if serviceName == "" {
		serviceName = strings.TrimSpace(v.GetString("relgraph_service_name"))
	}
	if serviceName == "" {
		serviceName = "relgraph"
	}

	serviceVersion := strings.TrimSpace(v.GetString("relgraph_version"))
	if serviceVersion == "" {
		serviceVersion = strings.TrimSpace(v.GetString("otel_service_version"))
	}
	if serviceVersion == "" {
		serviceVersion = "dev"
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	otlpCommonHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_headers"))
	otlpTraceHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_traces_headers"))
	otlpMetricHeaders := parseOTLPHeaders(v.GetString("otel_exporter_otlp_metrics_headers"))
	metricsConsole := v.GetBool("relgraph_otel_metrics_console")
	otelEnabled := v.GetBool("relgraph_otel_enabled") || otlpEndpoint != "" || metricsConsole

	cfg := Config{
		Environment: env,
		Server:      ServerConfig{Port: port},
		Backend: BackendConfig{
			URL:       backendURL,
			TimeoutMS: timeoutMS,
			Port:      backendPort,
		},
		Knowledge: KnowledgeConfig{
			DBPath:        strings.TrimSpace(v.GetString("relgraph_db_path")),
			LogTiming:     v.GetBool("relgraph_db_timing"),
			RelationsFile: strings.TrimSpace(v.GetString("relgraph_relations_file")),
		},
		LLM: LLMConfig{
			OllamaURL:      strings.TrimSpace(v.GetString("relgraph_ollama_url")),
			Model:          strings.TrimSpace(v.GetString("relgraph_ollama_model")),
			APIKey:         strings.TrimSpace(v.GetString("relgraph_ollama_api_key")),
			MaxConcurrency: maxConcurrency,
		},
		Events: EventsConfig{
			URL:    strings.TrimSpace(v.GetString("relgraph_events_url")),
			Token:  strings.TrimSpace(v.GetString("relgraph_events_token")),
			Secret: strings.TrimSpace(v.GetString("relgraph_events_secret")),
		},
		Observability: ObservabilityConfig{
			Enabled:           otelEnabled,
			OTLPEndpoint:      otlpEndpoint,
			OTLPTraceHeaders:  mergeHeaderMaps(otlpCommonHeaders, otlpTraceHeaders),
			OTLPMetricHeaders: mergeHeaderMaps(otlpCommonHeaders, otlpMetricHeaders),
			ServiceName:       serviceName,
			ServiceVer:        serviceVersion,
			SamplingRatio:     samplingRatio,
			MetricsConsole:    metricsConsole,
		},
	}

	if cfg.Knowledge.DBPath == "" {
		cfg.Knowledge.DBPath = "data/relations"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.2"
	}

	return cfg, nil
}

func parseOTLPHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key := strings.TrimSpace(pair[0])
		value := strings.TrimSpace(pair[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mergeHeaderMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

func (c Config) IsLocalDevelopment() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "local", "dev", "development", "test":
		return true
	default:
		return false
	}
}

// BackendTimeout is the per-request budget for backend calls.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutMS) * time.Millisecond
}

// LLMEnabled reports whether an Ollama endpoint is configured.
func (c Config) LLMEnabled() bool {
	return c.LLM.OllamaURL != ""
}

// EventsEnabled reports whether the query-audit sink is fully configured.
func (c Config) EventsEnabled() bool {
	return c.Events.URL != "" && c.Events.Token != "" && c.Events.Secret != ""
}

func resolveEnvironment(v *viper.Viper) string {
	for _, key := range []string{"relgraph_env", "app_env", "go_env"} {
		value := strings.TrimSpace(v.GetString(key))
		if value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}

// Telemetry converts the observability section for the telemetry setup.
func (c Config) Telemetry() observability.OpenTelemetryConfig {
	o := c.Observability
	return observability.OpenTelemetryConfig{
		Enabled:           o.Enabled,
		Environment:       c.Environment,
		OTLPEndpoint:      o.OTLPEndpoint,
		OTLPTraceHeaders:  o.OTLPTraceHeaders,
		OTLPMetricHeaders: o.OTLPMetricHeaders,
		ServiceName:       o.ServiceName,
		ServiceVer:        o.ServiceVer,
		SamplingRatio:     o.SamplingRatio,
		MetricsConsole:    o.MetricsConsole,
	}
}
