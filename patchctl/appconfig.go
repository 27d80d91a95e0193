package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/wiless/patcharray"
	"github.com/wiless/patcharray/design"
	"github.com/wiless/patcharray/tuning"
)

// AppConfig holds the settings of the tool that are not design inputs
type AppConfig struct {
	LogLevel        string  `mapstructure:"log_level"`
	LogFormat       string  `mapstructure:"log_format"`
	Tolerance       float64 `mapstructure:"tolerance"`
	MaxIterations   int     `mapstructure:"max_iterations"`
	ScaleFeedOffset bool    `mapstructure:"scale_feed_offset"`
}

var appConfig AppConfig

func (a *AppConfig) SetDefault() {
	a.LogLevel = "info"
	a.LogFormat = "text"
	a.Tolerance = tuning.DefaultTolerancePercent
	a.MaxIterations = 0
	a.ScaleFeedOffset = true
}

// SessionOptions turns the tuning settings into session options
func (a AppConfig) SessionOptions() []patcharray.Option {
	return []patcharray.Option{
		patcharray.WithTolerance(a.Tolerance),
		patcharray.WithMaxIterations(a.MaxIterations),
		patcharray.WithFeedOffsetScaling(a.ScaleFeedOffset),
	}
}

// ReadAppConfig loads .env, the config file and PATCHARRAY_ environment
// variables, in increasing priority, on top of the built-in defaults.
func ReadAppConfig(cfgFile string) error {
	viper.Reset()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var defaults AppConfig
	defaults.SetDefault()
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("log_format", defaults.LogFormat)
	viper.SetDefault("tolerance", defaults.Tolerance)
	viper.SetDefault("max_iterations", defaults.MaxIterations)
	viper.SetDefault("scale_feed_offset", defaults.ScaleFeedOffset)

	inputs, err := design.NewInputs().Params()
	if err != nil {
		return err
	}
	for k, v := range inputs {
		viper.SetDefault(k, v)
	}

	viper.SetEnvPrefix("PATCHARRAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("patcharray")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
		log.Debug("no config file, using defaults")
	} else {
		log.WithField("file", viper.ConfigFileUsed()).Debug("config loaded")
	}

	if err := viper.Unmarshal(&appConfig); err != nil {
		return err
	}
	return configureLogging(appConfig)
}

func configureLogging(a AppConfig) error {
	level, err := log.ParseLevel(a.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if a.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// ConfigInputs decodes the design inputs from the merged settings
func ConfigInputs() (*design.Inputs, error) {
	in := design.NewInputs()
	if err := design.DecodeInputs(viper.AllSettings(), in); err != nil {
		return nil, err
	}
	return in, nil
}
