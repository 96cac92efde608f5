package config

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/questline/mint-console/common"
	minterconfig "github.com/questline/mint-console/modules/minter/config"
	"github.com/questline/mint-console/pkg/logger"
	"github.com/questline/mint-console/pkg/logger/slogx"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkPreprod,
		HTTPServer: HTTPServer{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger     logger.Config  `mapstructure:"logger"`
	Network    common.Network `mapstructure:"network"`
	HTTPServer HTTPServer     `mapstructure:"http_server"`
	Modules    Modules        `mapstructure:"modules"`
}

type HTTPServer struct {
	Port int `mapstructure:"port"`
}

type Modules struct {
	Minter minterconfig.Config `mapstructure:"minter"`
}

// BindPFlag binds a cobra flag to a configuration key, overriding both the
// config file and environment variables.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to config", slogx.Error(err))
	}
}

// Parse loads the configuration from the given file (or ./config.yaml when
// empty), environment variables and bound flags. First call wins; later
// calls return the already-parsed configuration.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slogx.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
	})

	return *config
}

// Load returns the parsed configuration, parsing with defaults if Parse was
// never called.
func Load() Config {
	return Parse("")
}
