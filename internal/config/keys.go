package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "DESKD_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "DESKD_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "gemini.base_url", typ: kString, env: "DESKD_GEMINI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.BaseURL },
	},
	{
		key: "gemini.model", typ: kString, env: "DESKD_GEMINI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.Model },
	},
	{
		key: "gemini.temperature", typ: kFloat, env: "DESKD_GEMINI_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.Gemini.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.Gemini.Temperature },
	},
	{
		key: "gemini.api_key", typ: kString, env: "DESKD_GEMINI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Gemini.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Gemini.APIKey },
	},
	{
		key: "pipeline.max_retries", typ: kInt, env: "DESKD_PIPELINE_MAX_RETRIES",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.MaxRetries = v.(int) },
		extract: func(cfg Config) any { return cfg.Pipeline.MaxRetries },
	},
	{
		key: "pipeline.top_k", typ: kInt, env: "DESKD_PIPELINE_TOP_K",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.TopK = v.(int) },
		extract: func(cfg Config) any { return cfg.Pipeline.TopK },
	},
	{
		key: "pipeline.call_timeout", typ: kString, env: "DESKD_PIPELINE_CALL_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.CallTimeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Pipeline.CallTimeout },
	},
	{
		key: "faq.file", typ: kString, env: "DESKD_FAQ_FILE",
		apply:   func(cfg *Config, v any) { cfg.FAQ.File = v.(string) },
		extract: func(cfg Config) any { return cfg.FAQ.File },
	},
	{
		key: "responselog.file", typ: kString, env: "DESKD_RESPONSELOG_FILE",
		apply:   func(cfg *Config, v any) { cfg.ResponseLog.File = v.(string) },
		extract: func(cfg Config) any { return cfg.ResponseLog.File },
	},
	{
		key: "log.level", typ: kString, env: "DESKD_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "ratelimit.rps", typ: kFloat, env: "DESKD_RATELIMIT_RPS",
		apply:   func(cfg *Config, v any) { cfg.RateLimit.RPS = v.(float64) },
		extract: func(cfg Config) any { return cfg.RateLimit.RPS },
	},
	{
		key: "ratelimit.burst", typ: kInt, env: "DESKD_RATELIMIT_BURST",
		apply:   func(cfg *Config, v any) { cfg.RateLimit.Burst = v.(int) },
		extract: func(cfg Config) any { return cfg.RateLimit.Burst },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
