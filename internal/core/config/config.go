package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the driver daemon.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the local bridge API listens.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8090"`

	// API holds the REST backend connection settings.
	API APIConfig `mapstructure:",squash"`

	// Proxy holds the optional outbound proxy.
	Proxy ProxyConfig `mapstructure:",squash"`

	// Session holds the local session persistence settings.
	Session SessionConfig `mapstructure:",squash"`

	// Mirror holds the offline route mirror settings.
	Mirror MirrorConfig `mapstructure:",squash"`

	// Feed holds the pagination defaults shared by every feed.
	Feed FeedConfig `mapstructure:",squash"`

	// Location holds the background location sampler settings.
	Location LocationConfig `mapstructure:",squash"`
}

// APIConfig holds the REST backend settings.
type APIConfig struct {
	// BaseURL is the REST API root, e.g. https://api.example.com/api/.
	BaseURL string `mapstructure:"API_BASE_URL" required:"true"`
	// ConnectTimeout bounds TCP/TLS connection setup.
	ConnectTimeout time.Duration `mapstructure:"API_CONNECT_TIMEOUT" default:"30s"`
	// ReadTimeout bounds each read from the connection.
	ReadTimeout time.Duration `mapstructure:"API_READ_TIMEOUT" default:"30s"`
	// WriteTimeout bounds each write to the connection.
	WriteTimeout time.Duration `mapstructure:"API_WRITE_TIMEOUT" default:"30s"`
}

// ProxyConfig holds the outbound proxy credentials.
type ProxyConfig struct {
	Enabled  bool   `mapstructure:"PROXY_ENABLED" default:"false"`
	Hostname string `mapstructure:"PROXY_HOST"`
	Port     int    `mapstructure:"PROXY_PORT"`
	Username string `mapstructure:"PROXY_USERNAME"`
	Password string `mapstructure:"PROXY_PASSWORD"`
}

// SessionConfig selects where the session is persisted.
type SessionConfig struct {
	// Backend is "sqlite" or "file".
	Backend string `mapstructure:"SESSION_BACKEND" default:"sqlite"`
	// Path is the database or JSON file path.
	Path string `mapstructure:"SESSION_PATH" default:"driver-session.db"`
}

// MirrorConfig holds the Redis document store used as the offline mirror.
type MirrorConfig struct {
	// RedisURL has the format redis://[:password@]host[:port][/database].
	RedisURL string `mapstructure:"MIRROR_REDIS_URL" default:"redis://localhost:6379/0"`
	// KeyPrefix is prepended to every route id.
	KeyPrefix string `mapstructure:"MIRROR_KEY_PREFIX" default:"route_mirror:"`
	// QueueSize bounds pending mirror writes; extra writes are dropped.
	QueueSize int `mapstructure:"MIRROR_QUEUE_SIZE" default:"64"`
}

// FeedConfig holds pagination defaults.
type FeedConfig struct {
	PageSize int `mapstructure:"FEED_PAGE_SIZE" default:"10"`
	// KeepStaleOnRefresh keeps the displayed items until page 1 of a refresh arrives.
	KeepStaleOnRefresh bool `mapstructure:"FEED_KEEP_STALE_ON_REFRESH" default:"true"`
}

// LocationConfig holds the location sampler settings.
type LocationConfig struct {
	Interval    time.Duration `mapstructure:"LOCATION_INTERVAL" default:"5s"`
	MinInterval time.Duration `mapstructure:"LOCATION_MIN_INTERVAL" default:"3s"`
	// PermissionGranted mirrors the platform's location permission at startup.
	PermissionGranted bool `mapstructure:"LOCATION_PERMISSION_GRANTED" default:"true"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if isNested(field.Type) {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if isNested(field.Type) {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}

// isNested reports whether a field is a config group to recurse into.
// time.Duration and other scalar kinds are leaves.
func isNested(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t != reflect.TypeOf(time.Time{})
}
