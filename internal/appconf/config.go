// Package appconf loads the dashboard configuration.
//
// Configuration is read once at startup from a YAML file, decoded in strict
// mode and validated using struct tags. Every failure is reported as a
// *ConfigError and is fatal to startup.
package appconf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath         = "transit-times.yaml"
	DefaultLogFile      = "transit-times.log"
	DefaultFeedURL      = "http://developer.trimet.org/ws/V1/arrivals"
	DefaultFetchTimeout = 5 * time.Second
)

// Config holds the stop set, credential and ambient settings.
type Config struct {
	LogLevel     string        `yaml:"log_level" validate:"required"`
	LogFile      string        `yaml:"log_file"`
	AppID        string        `yaml:"app_id" validate:"required"`
	TrainStop    string        `yaml:"train_stop" validate:"required,stopid"`
	BusStops     StopList      `yaml:"bus_stops" validate:"min=1,dive,required,stopid"`
	FeedURL      string        `yaml:"feed_url" validate:"omitempty,url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gte=0"`
}

// StopList is an ordered list of stop identifiers. It decodes from either a
// YAML sequence or a single comma-separated string. Duplicates are kept.
type StopList []string

func (s *StopList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*s = splitStops(raw)
		return nil
	case yaml.SequenceNode:
		var raw []string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		stops := make(StopList, 0, len(raw))
		for _, stop := range raw {
			stops = append(stops, strings.TrimSpace(stop))
		}
		*s = stops
		return nil
	default:
		return fmt.Errorf("line %d: bus_stops must be a list or a comma separated string", value.Line)
	}
}

func splitStops(raw string) StopList {
	if strings.TrimSpace(raw) == "" {
		return StopList{}
	}
	parts := strings.Split(raw, ",")
	stops := make(StopList, 0, len(parts))
	for _, part := range parts {
		stops = append(stops, strings.TrimSpace(part))
	}
	return stops
}

// ConfigError reports a configuration file that cannot be used.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config %s: key %q: %v", e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes and validates configuration bytes. path is only used for
// error messages.
func Parse(path string, data []byte) (Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("file is empty")
		}
		return Config{}, &ConfigError{Path: path, Err: err}
	}

	if err := newValidator().Struct(cfg); err != nil {
		return Config{}, validationError(path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.FeedURL == "" {
		c.FeedURL = DefaultFeedURL
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
}

// validStopID allows the characters transit agencies use in stop IDs: letters,
// digits, underscore, hyphen and dot.
var validStopID = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)

func newValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("stopid", func(fl validator.FieldLevel) bool {
		return validStopID.MatchString(fl.Field().String())
	})
	return validate
}

var yamlKeys = map[string]string{
	"LogLevel":     "log_level",
	"LogFile":      "log_file",
	"AppID":        "app_id",
	"TrainStop":    "train_stop",
	"BusStops":     "bus_stops",
	"FeedURL":      "feed_url",
	"FetchTimeout": "fetch_timeout",
}

func validationError(path string, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ConfigError{Path: path, Err: err}
	}

	fieldErr := validationErrors[0]
	field := fieldErr.StructField()
	if strings.HasPrefix(field, "BusStops[") {
		field = "BusStops"
	}
	key, ok := yamlKeys[field]
	if !ok {
		key = fieldErr.Field()
	}

	var reason string
	switch fieldErr.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = "needs at least one entry"
	case "url":
		reason = "must be a URL"
	case "gte":
		reason = "must not be negative"
	case "stopid":
		reason = fmt.Sprintf("%q is not a valid stop id", fieldErr.Value())
	default:
		reason = fmt.Sprintf("failed %q validation", fieldErr.Tag())
	}

	return &ConfigError{Path: path, Key: key, Err: errors.New(reason)}
}
