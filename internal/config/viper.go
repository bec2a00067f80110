package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ebacheck/internal/errors"
)

// ProjectFile is the per-project configuration file name.
const ProjectFile = "ebacheck.toml"

// EnvPrefix prefixes environment overrides, e.g.
// EBACHECK_PARAMS_MAX_ID_LENGTH or EBACHECK_RUN_JOBS.
const EnvPrefix = "EBACHECK"

// Settings are the run settings a user may keep in ebacheck.toml.
type Settings struct {
	Profile  string        `mapstructure:"profile"`
	Format   string        `mapstructure:"format"`
	Jobs     int           `mapstructure:"jobs"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheDir string        `mapstructure:"cache_dir"`
}

// SetDefaults configures default values for all keys.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("params."+KeyMaxStringLength, DefaultMaxStringLength)
	v.SetDefault("params."+KeyMaxIDLength, DefaultMaxIDLength)

	v.SetDefault("run.profile", "")
	v.SetDefault("run.format", "pretty")
	v.SetDefault("run.jobs", 0) // 0 = GOMAXPROCS
	v.SetDefault("run.timeout", time.Duration(0))
	v.SetDefault("run.cache_dir", "")
}

// NewViper layers defaults, the config file and the environment.
// An explicit path must exist; otherwise ebacheck.toml is searched for
// upwards from dir. Flags are bound by the caller.
func NewViper(explicit, dir string) (*viper.Viper, string, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	path := explicit
	if path == "" {
		path = FindProjectConfig(dir)
	}
	if path == "" {
		return v, "", nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, "", errors.Mark(errors.Wrapf(err, "reading config %s", path), errors.ErrConfig)
	}
	return v, path, nil
}

// FindProjectConfig walks up from dir looking for ebacheck.toml.
func FindProjectConfig(dir string) string {
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return ""
		}
	}
	for {
		candidate := filepath.Join(dir, ProjectFile)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ParamsFromViper collects the raw params table. Recognised keys are read
// through Get so environment overrides apply.
func ParamsFromViper(v *viper.Viper) map[string]string {
	params := make(map[string]string)
	for key := range v.GetStringMapString("params") {
		params[key] = v.GetString("params." + key)
	}
	for _, key := range Keys() {
		params[key] = v.GetString("params." + key)
	}
	return params
}

// FromViper parses ParamsFromViper.
func FromViper(v *viper.Viper) (Options, []string, error) {
	return Parse(ParamsFromViper(v))
}

// LoadSettings decodes the run table.
func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.UnmarshalKey("run", &s); err != nil {
		return Settings{}, errors.Mark(errors.Wrap(err, "decoding run settings"), errors.ErrConfig)
	}
	if s.Jobs < 0 {
		return Settings{}, errors.NewConfigError("run.jobs must be >= 0, got %d", s.Jobs)
	}
	if s.Timeout < 0 {
		return Settings{}, errors.NewConfigError("run.timeout must be >= 0, got %s", s.Timeout)
	}
	return s, nil
}
