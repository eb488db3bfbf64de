// Package config maps viper settings onto atlas types.
package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/roles"
)

// Configuration keys.
const (
	KeyDatabasePath   = "database.path"
	KeyServerPort     = "server.port"
	KeyAllowedOrigins = "server.allowed_origins"
	KeyServerTLS      = "server.tls"
	KeyCertDir        = "server.cert_dir"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"

	inferencePrefix = "inference"
)

// Defaults.
const (
	DefaultDatabasePath = "$HOME/.local/share/atlas/atlas.db"
	DefaultServerPort   = 8080
	DefaultCertDir      = "$HOME/.config/atlas/certs"
)

// Server holds the HTTP API settings.
type Server struct {
	CertDir        string
	AllowedOrigins []string
	Port           int
	TLS            bool
}

// SetDefaults registers default values for every key, including one
// inference.<name> key per inference parameter so environment overrides
// such as ATLAS_INFERENCE_WORK_MAX_DISTANCE_KM are picked up.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyServerPort, DefaultServerPort)
	v.SetDefault(KeyAllowedOrigins, []string{"*"})
	v.SetDefault(KeyServerTLS, false)
	v.SetDefault(KeyCertDir, DefaultCertDir)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	for name, value := range paramDefaults() {
		v.SetDefault(inferencePrefix+"."+name, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// DatabasePath returns the configured database path with ~ and
// environment variables expanded.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}

// ServerConfig reads the HTTP API settings.
func ServerConfig(v *viper.Viper) (Server, error) {
	s := Server{
		Port:           v.GetInt(KeyServerPort),
		AllowedOrigins: v.GetStringSlice(KeyAllowedOrigins),
		TLS:            v.GetBool(KeyServerTLS),
		CertDir:        v.GetString(KeyCertDir),
	}
	if s.CertDir == "" {
		s.CertDir = DefaultCertDir
	}
	s.CertDir = ExpandPath(s.CertDir)
	if s.Port <= 0 || s.Port > 65535 {
		return Server{}, fmt.Errorf("%w: server port %d", common.ErrInvalidConfig, s.Port)
	}
	return s, nil
}

// InferenceParams overlays the inference.* keys onto the default
// parameters and validates the result.
func InferenceParams(v *viper.Viper) (roles.Params, error) {
	// Unmarshal resolves every leaf key, so ATLAS_INFERENCE_* overrides
	// apply. UnmarshalKey("inference") would only see the nested default map.
	settings := struct {
		Inference roles.Params `mapstructure:"inference"`
	}{Inference: roles.DefaultParams()}
	if err := v.Unmarshal(&settings); err != nil {
		return roles.Params{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	params := settings.Inference
	if err := params.Validate(); err != nil {
		return roles.Params{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return params, nil
}

// paramDefaults flattens the default parameters into their mapstructure
// names.
func paramDefaults() map[string]any {
	out := make(map[string]any)
	if err := mapstructure.Decode(roles.DefaultParams(), &out); err != nil {
		return nil
	}
	return out
}
