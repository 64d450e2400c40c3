package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/cordialsys/restake/config/constants"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var ErrNoConfigFile = errors.New("no restake.yaml found")

// newViper looks for restake.yaml at $RESTAKE_CONFIG, then in the working directory, its
// parent and finally the restake home.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("restake")
	v.SetConfigType("yaml")
	if path := os.Getenv(constants.ConfigEnv); path != "" {
		v.SetConfigFile(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath(constants.DefaultHome)
	return v
}

// ReadFile decodes the restake section of the config file on top of cfg. Keys the file
// leaves out keep the value cfg already has.
func ReadFile(cfg *Config) error {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrNoConfigFile, err)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	// viper decodes with mapstructure tags, so the section goes back through yaml
	section := v.GetStringMap(Section)
	if len(section) == 0 {
		return nil
	}
	bz, err := yaml.Marshal(section)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(bz, cfg); err != nil {
		return fmt.Errorf("decoding %s section of %s: %w", Section, v.ConfigFileUsed(), err)
	}
	return nil
}
