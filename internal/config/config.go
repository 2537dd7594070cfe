// Package config resolves run options from flags, SBOM_TO_CSV_* environment
// variables and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/saltyster/sbom-to-csv/internal/model"
)

const EnvPrefix = "SBOM_TO_CSV"

const (
	KeyConfig    = "config"
	KeyRootKey   = "root-key"
	KeySeparator = "separator"
	KeyBoolStyle = "bool-style"
	KeySummary   = "summary"
	KeyLogLevel  = "log-level"
	KeyCheckPurl = "check-purl"
)

const (
	DefaultRootKey = "packages"
	// GitHub exports are flattened with a comma so array paths read
	// "externalRefs,0,...".
	DefaultSeparator = ","
	DefaultLogLevel  = "info"
)

type Config struct {
	SBOMPath       string
	SupplementPath string
	OutputPath     string

	RootKey     string
	Separator   string
	BoolStyle   model.BoolStyle
	SummaryPath string
	LogLevel    string
	CheckPurl   bool
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyRootKey, DefaultRootKey)
	v.SetDefault(KeySeparator, DefaultSeparator)
	v.SetDefault(KeyBoolStyle, string(model.BoolStylePython))
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyCheckPurl, true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	// An empty root key is meaningful: the document itself is the list.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return v
}

// Load reads the config file, if one was named, and validates the options.
func Load(v *viper.Viper) (Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	style, err := model.ParseBoolStyle(v.GetString(KeyBoolStyle))
	if err != nil {
		return Config{}, err
	}

	sep := v.GetString(KeySeparator)
	if sep == "" {
		return Config{}, fmt.Errorf("separator must not be empty")
	}

	return Config{
		RootKey:     v.GetString(KeyRootKey),
		Separator:   sep,
		BoolStyle:   style,
		SummaryPath: v.GetString(KeySummary),
		LogLevel:    v.GetString(KeyLogLevel),
		CheckPurl:   v.GetBool(KeyCheckPurl),
	}, nil
}
