// Package config loads the YAML configuration with struct-tag defaults,
// so a missing file still yields a runnable setup.
package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Auth provider names.
const (
	AuthProviderToken = "token"
	AuthProviderClerk = "clerk"
)

var portPattern = regexp.MustCompile(`^\d+$`)

// Config represents the complete configuration structure
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Content ContentConfig `yaml:"content"`
	Media   MediaConfig   `yaml:"media"`
	DB      DBConfig      `yaml:"db"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"Inkpress"`
	Description string `yaml:"description" default:"A block-based publishing engine"`
	BaseURL     string `yaml:"base_url" default:"http://localhost:8080"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"8080"`
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Match(portPattern)),
	)
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type ContentConfig struct {
	FallbackCategory string `yaml:"fallback_category" default:"Technology"`
	PlaceholderImage string `yaml:"placeholder_image" default:"/placeholder.jpg"`
	PostsPerPage     int    `yaml:"posts_per_page" default:"50"`
	FeaturedLimit    int    `yaml:"featured_limit" default:"3"`
	RecentLimit      int    `yaml:"recent_limit" default:"5"`
}

// MediaConfig points at the S3-compatible bucket for cover uploads. The
// access keys come from the environment, not the config file.
type MediaConfig struct {
	Bucket               string `yaml:"bucket" default:""`
	Endpoint             string `yaml:"endpoint" default:""`
	PublicBaseURL        string `yaml:"public_base_url" default:""`
	UploadTimeoutSeconds int    `yaml:"upload_timeout_seconds" default:"30"`
}

type AuthConfig struct {
	Provider  string `yaml:"provider" default:"token"`
	AdminUser string `yaml:"admin_user" default:"admin"`
}

func (c AuthConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Provider, validation.Required,
			validation.In(AuthProviderToken, AuthProviderClerk)),
	)
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type DBConfig struct {
	Path string `yaml:"path" default:"inkpress.db"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		// Missing file means defaults only.
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	AppConfig = config
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
