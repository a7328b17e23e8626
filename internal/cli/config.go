package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileBase = "config.yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyFileName    = "file_name"
	cfgKeyFormat      = "format"
	cfgKeyLockTimeout = "lock_timeout"
	cfgKeyLogLevel    = "log_level"

	envPrefix = "TRACKER"
)

// configFile is the structure written to config.yaml on first run. The
// file name is left out so that it follows the backend's default.
type configFile struct {
	Backend  string `yaml:"backend"`
	Format   string `yaml:"format"`
	LogLevel string `yaml:"log_level"`
	DataDir  string `yaml:"data_dir,omitempty"`
}

// effectiveConfig is what `tracker config` prints.
type effectiveConfig struct {
	ConfigDir string       `yaml:"config_dir"`
	DataFile  string       `yaml:"data_file"`
	LogLevel  string       `yaml:"log_level"`
	Store     types.Config `yaml:"store"`
}

// loadConfig resolves directories, reads config.yaml with Viper and returns
// the validated store config plus the configured log level. A missing
// config.yaml is not an error.
func (a *app) loadConfig() (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve config dir: %w: %w", errSystem, err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendFile)
	v.SetDefault(cfgKeyFileName, "")
	v.SetDefault(cfgKeyFormat, types.FormatLine)
	v.SetDefault(cfgKeyLockTimeout, types.DefaultLockTimeout)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	// data_dir is not bound: TRACKER_DATA_DIR ranks below config.yaml and
	// is handled by paths.ResolveDataDir.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range []string{cfgKeyBackend, cfgKeyFileName, cfgKeyFormat, cfgKeyLockTimeout, cfgKeyLogLevel} {
		if err := v.BindEnv(key); err != nil {
			return types.Config{}, "", fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, "", fmt.Errorf("read config: %w", err)
		}
	}

	dataDir, err := paths.ResolveDataDir(a.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, "", fmt.Errorf("resolve data dir: %w: %w", errSystem, err)
	}

	cfg := types.Config{
		Backend:     v.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		FileName:    v.GetString(cfgKeyFileName),
		Format:      v.GetString(cfgKeyFormat),
		LockTimeout: v.GetDuration(cfgKeyLockTimeout),
	}.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return types.Config{}, "", fmt.Errorf("config: %w", err)
	}

	a.configDir = configDir
	return cfg, v.GetString(cfgKeyLogLevel), nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	path := filepath.Join(configDir, configFileBase)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(configFile{
		Backend:  types.BackendFile,
		Format:   types.FormatLine,
		LogLevel: "warn",
		DataDir:  dataDir,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := "# Tracker configuration\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(effectiveConfig{
				ConfigDir: a.configDir,
				DataFile:  paths.DataFile(a.cfg.DataDir, a.cfg.FileName),
				LogLevel:  a.level,
				Store:     a.cfg,
			})
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
