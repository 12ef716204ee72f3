package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vidshrink/internal/dirs"
	"vidshrink/internal/encoder"
)

// Keys shared by flags, env (VIDSHRINK_<KEY>) and the config file.
const (
	KeyFFmpeg           = "ffmpeg"
	KeyVerbose          = "verbose"
	KeyLogLevel         = "log_level"
	KeyLogFormat        = "log_format"
	KeyLogFile          = "log_file"
	KeyQuality          = "quality"
	KeyCodec            = "codec"
	KeyResolution       = "resolution"
	KeyCRF              = "crf"
	KeyNoUI             = "no_ui"
	KeyProgressInterval = "progress_interval"
	KeyGracePeriod      = "grace_period"
	KeyProbeTimeout     = "probe_timeout"
)

// flagNames maps config keys to their flag spellings.
var flagNames = map[string]string{
	KeyFFmpeg:           "ffmpeg",
	KeyVerbose:          "verbose",
	KeyLogLevel:         "log-level",
	KeyLogFormat:        "log-format",
	KeyLogFile:          "log-file",
	KeyQuality:          "quality",
	KeyCodec:            "codec",
	KeyResolution:       "resolution",
	KeyCRF:              "crf",
	KeyNoUI:             "no-ui",
	KeyProgressInterval: "progress-interval",
	KeyGracePeriod:      "grace-period",
	KeyProbeTimeout:     "probe-timeout",
}

// App is the resolved configuration handed to commands, the supervisor and the UI.
type App struct {
	FFmpegPath string
	Verbose    bool
	LogLevel   string
	LogFormat  string
	LogFile    string

	Quality    string
	Codec      string
	Resolution string
	CRF        int // -1 means the tier default

	NoUI             bool
	ProgressInterval time.Duration
	GracePeriod      time.Duration
	ProbeTimeout     time.Duration

	ConfigFile string // the file that was read, empty if none
}

// Load resolves App with precedence flag > env/config file > stored settings > default.
// flags may be nil. configFile overrides the search in the config directory.
func Load(flags *pflag.FlagSet, st Settings, configFile string) (App, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // supports config.{toml|yaml|yml|json}
		if cfgDir, err := dirs.ConfigDir(); err == nil {
			v.AddConfigPath(cfgDir)
		}
	}

	v.SetEnvPrefix("VIDSHRINK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyFFmpeg, st.FFmpegPath)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyQuality, nonEmpty(st.LastQuality, "balanced"))
	v.SetDefault(KeyCodec, nonEmpty(st.LastCodec, "h264"))
	v.SetDefault(KeyResolution, nonEmpty(st.LastResolution, "original"))
	v.SetDefault(KeyCRF, -1)
	v.SetDefault(KeyNoUI, false)
	v.SetDefault(KeyProgressInterval, 500*time.Millisecond)
	v.SetDefault(KeyGracePeriod, time.Second)
	v.SetDefault(KeyProbeTimeout, encoder.DefaultProbeTimeout)

	if flags != nil {
		for key, name := range flagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return App{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return App{}, fmt.Errorf("read config: %w", err)
		}
	}

	app := App{
		FFmpegPath:       v.GetString(KeyFFmpeg),
		Verbose:          v.GetBool(KeyVerbose),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
		LogFile:          v.GetString(KeyLogFile),
		Quality:          v.GetString(KeyQuality),
		Codec:            v.GetString(KeyCodec),
		Resolution:       v.GetString(KeyResolution),
		CRF:              v.GetInt(KeyCRF),
		NoUI:             v.GetBool(KeyNoUI),
		ProgressInterval: v.GetDuration(KeyProgressInterval),
		GracePeriod:      v.GetDuration(KeyGracePeriod),
		ProbeTimeout:     v.GetDuration(KeyProbeTimeout),
		ConfigFile:       v.ConfigFileUsed(),
	}
	return app, app.validate()
}

func (a App) validate() error {
	if a.ProgressInterval < 0 {
		return fmt.Errorf("%s must not be negative", KeyProgressInterval)
	}
	if a.GracePeriod <= 0 {
		return fmt.Errorf("%s must be positive", KeyGracePeriod)
	}
	if a.ProbeTimeout <= 0 {
		return fmt.Errorf("%s must be positive", KeyProbeTimeout)
	}
	return nil
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
