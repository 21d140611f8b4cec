package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// LookupFunc returns the value of a configuration variable, or "" when unset.
type LookupFunc func(key string) string

// Load reads configuration from the process environment, applying tag
// defaults, then validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with an explicit variable source.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// fieldTags are the loader tags of one struct field.
type fieldTags struct {
	env      string
	alt      string
	fallback string
	required bool
}

func tagsOf(f reflect.StructField) fieldTags {
	return fieldTags{
		env:      f.Tag.Get("env"),
		alt:      f.Tag.Get("envAlt"),
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
}

// resolve returns the configured value: primary variable, then alternate, then default.
func (ft fieldTags) resolve(lookup LookupFunc) (value string, set bool) {
	for _, key := range []string{ft.env, ft.alt} {
		if key == "" {
			continue
		}
		if v := strings.TrimSpace(lookup(key)); v != "" {
			return v, true
		}
	}
	return ft.fallback, false
}

// loadStruct populates nested config sections from lookup. Every missing
// required variable and unparseable value is reported, not just the first.
func loadStruct(v reflect.Value, lookup LookupFunc) error {
	var errs []error

	for _, field := range reflect.VisibleFields(v.Type()) {
		if !field.IsExported() || len(field.Index) > 1 {
			continue
		}
		fv := v.FieldByIndex(field.Index)

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fv, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		tags := tagsOf(field)
		if tags.env == "" {
			continue
		}

		value, set := tags.resolve(lookup)
		if !set && tags.required {
			errs = append(errs, fmt.Errorf("required environment variable %s is not set", tags.env))
			continue
		}
		if value == "" {
			continue
		}

		if err := setField(fv, value); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", tags.env, value, err))
		}
	}

	return errors.Join(errs...)
}

var durationType = reflect.TypeOf(time.Duration(0))

// setField parses value into field according to the field's type.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		field.Set(reflect.ValueOf(splitList(value)))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(value string) []string {
	var out []string
	for p := range strings.SplitSeq(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var p problems

	srv := c.Server
	p.check(srv.Port > 0 && srv.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", srv.Port)
	p.check(srv.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(srv.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	p.check(srv.RequestTimeout > 0, "SERVER_REQUEST_TIMEOUT must be positive")

	ds := c.Dataset
	p.check(ds.Source != "", "DATASET_SOURCE is required")
	p.check(ds.FetchTimeout > 0, "DATASET_FETCH_TIMEOUT must be positive")
	p.check(ds.FetchRetries >= 0, "DATASET_FETCH_RETRIES must be non-negative")
	p.check(ds.MaxSize > 0, "DATASET_MAX_SIZE must be positive")

	db := c.Database
	p.check(!db.SnapshotEnabled || db.URL != "", "SNAPSHOT_ENABLED is true but DATABASE_URL is empty")
	p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.Burst > 0, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is true but API_KEYS is empty")

	p.check(slices.Contains(logLevels, strings.ToLower(c.Logging.Level)),
		"LOG_LEVEL (%q) must be one of: %s", c.Logging.Level, strings.Join(logLevels, ", "))
	p.check(slices.Contains(logFormats, strings.ToLower(c.Logging.Format)),
		"LOG_FORMAT (%q) must be one of: %s", c.Logging.Format, strings.Join(logFormats, ", "))

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL, dataset query string and API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Dataset: {Source: %q, Encoding: %q, MaxSize: %d}, ",
		maskQuery(c.Dataset.Source), c.Dataset.Encoding, c.Dataset.MaxSize))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, Snapshot: %v, MaxConns: %d}, ",
		maskSet(c.Database.URL), c.Database.SnapshotEnabled, c.Database.MaxConns))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d, Burst: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.Burst))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

func maskSet(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}

func maskQuery(source string) string {
	if i := strings.IndexByte(source, '?'); i >= 0 {
		return source[:i] + "?[MASKED]"
	}
	return source
}
