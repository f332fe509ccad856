package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	dominv "github.com/minhngo-dev/stock-tally/internal/domain/inventory"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type InventoryConfig struct {
	// DataFile is where snapshots are saved and loaded from.
	DataFile string `mapstructure:"data_file"`
	// LowStockThreshold is the quantity below which an item counts as low stock.
	LowStockThreshold int `mapstructure:"low_stock_threshold"`
}

type MetricsConfig struct {
	// Addr enables the /metrics listener when non-empty, e.g. ":9090".
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from the optional file at path, then from STOCKTALLY_*
// environment variables, on top of the built-in defaults. A missing config file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("service.name", "stock-tally")
	v.SetDefault("service.env", "dev")
	v.SetDefault("inventory.data_file", "inventory.json")
	v.SetDefault("inventory.low_stock_threshold", dominv.DefaultLowStockThreshold)
	v.SetDefault("metrics.addr", "")

	v.SetEnvPrefix("STOCKTALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &conf, nil
}
