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

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envField is one tagged leaf field of the config tree.
type envField struct {
	value reflect.Value
	name  string // primary variable
	alt   string // fallback variable, may be empty
	def   string
}

// collectFields walks nested structs and returns every env-tagged field.
func collectFields(v reflect.Value, out []envField) []envField {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		switch {
		case !fv.CanSet():
		case sf.Type.Kind() == reflect.Struct && sf.Type != durationType:
			out = collectFields(fv, out)
		case sf.Tag.Get("env") != "":
			out = append(out, envField{
				value: fv,
				name:  sf.Tag.Get("env"),
				alt:   sf.Tag.Get("envAlt"),
				def:   sf.Tag.Get("default"),
			})
		}
	}
	return out
}

// loadStruct populates env-tagged fields, falling back to their defaults.
func loadStruct(v reflect.Value) error {
	for _, f := range collectFields(v, nil) {
		value := lookupEnv(f.name, f.alt)
		if value == "" {
			value = f.def
		}
		if value == "" {
			continue
		}
		if err := setField(f.value, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", f.name, value, err)
		}
	}
	return nil
}

// lookupEnv returns the primary variable, falling back to the alternate name.
func lookupEnv(name, alt string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	if alt != "" {
		return strings.TrimSpace(os.Getenv(alt))
	}
	return ""
}

// setField sets a reflect.Value from a string based on its type.
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

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

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

// splitList splits comma-separated values, dropping blanks.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Validate checks every group and reports all failures at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Upload.validate(),
		c.Rate.validate(),
		c.Security.validate(),
		c.Logging.validate(),
		c.Recon.validate(),
	)
}

func (c *ServerConfig) validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT (%d) must be 1-65535", c.Port))
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		errs = append(errs, errors.New("SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT and SERVER_IDLE_TIMEOUT must be non-negative"))
	}
	errs = append(errs,
		positive("SERVER_SHUTDOWN_TIMEOUT", int64(c.ShutdownTimeout)),
		positive("SERVER_REQUEST_TIMEOUT", int64(c.RequestTimeout)),
	)
	return errors.Join(errs...)
}

func (c *UploadConfig) validate() error {
	return errors.Join(
		positive("UPLOAD_MAX_FILE_SIZE", c.MaxFileSize),
		positive("UPLOAD_MAX_CONCURRENT", int64(c.MaxConcurrent)),
		positive("UPLOAD_MAX_WAIT_TIME", int64(c.MaxWaitTime)),
	)
}

func (c *RateLimitConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	return positive("RATE_LIMIT_REQUESTS_PER_MINUTE", int64(c.RequestsPerMinute))
}

func (c *SecurityConfig) validate() error {
	if c.RequireAPIKey && len(c.APIKeys) == 0 {
		return errors.New("REQUIRE_API_KEY is true but API_KEYS is empty")
	}
	return nil
}

func (c *LoggingConfig) validate() error {
	var errs []error
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Level)) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level))
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.Format)) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT (%q) must be one of: text, json", c.Format))
	}
	return errors.Join(errs...)
}

func (c *ReconConfig) validate() error {
	var errs []error
	if _, err := time.Parse("2006-01-02", c.DefaultDate); err != nil {
		errs = append(errs, fmt.Errorf("RECON_DEFAULT_DATE (%q) must be YYYY-MM-DD", c.DefaultDate))
	}
	if c.ProfilePath != "" {
		if _, err := os.Stat(c.ProfilePath); err != nil {
			errs = append(errs, fmt.Errorf("RECON_PROFILE (%q) is not readable: %w", c.ProfilePath, err))
		}
	}
	return errors.Join(errs...)
}

func positive(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// API keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Addr: %q}, ", c.Server.Addr())
	fmt.Fprintf(&b, "Upload: {MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format)
	fmt.Fprintf(&b, "Recon: {DefaultDate: %q, ProfilePath: %q}",
		c.Recon.DefaultDate, c.Recon.ProfilePath)
	b.WriteString("}")
	return b.String()
}
