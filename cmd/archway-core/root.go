package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/archway-no/archway/internal"
	"github.com/archway-no/archway/internal/backend"
	"github.com/archway-no/archway/internal/config"
	"github.com/archway-no/archway/pkg/logger"
	"github.com/archway-no/archway/version"
)

const defaultConfigPath = "/etc/archway/core.yaml"

// loopbackDelay is how long the development backend waits before resolving a
// job. Real deployments replace the loopback with an execution backend.
const loopbackDelay = 3 * time.Second

var v *viper.Viper

var rootCmd = &cobra.Command{
	Use: "archway-core",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRoot(); err != nil {
			log.Error(fmt.Sprintf("%+v", err))
			os.Exit(1)
		}
	},
}

func init() {
	v = viper.New()
	v.SetEnvPrefix("archway")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	rootCmd.Flags().String("config-file", "", "path to the configuration file")
	rootCmd.Flags().Int("port", config.DefaultPort, "port the core API listens on")
	rootCmd.Flags().String("studio", "", "studio identifier")
	rootCmd.Flags().String("log-level", "", "log level (trace, debug, info, warn, error)")
	_ = v.BindPFlag("config_file", rootCmd.Flags().Lookup("config-file"))
	_ = v.BindPFlag("port", rootCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("studio", rootCmd.Flags().Lookup("studio"))
	_ = v.BindPFlag("log.level", rootCmd.Flags().Lookup("log-level"))
}

func runRoot() error {
	cfg, err := initializeConfig()
	if err != nil {
		return err
	}
	logger.SetLogrus(cfg.Log)

	printable, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "error marshaling configuration")
	}
	log.Infof("core configuration: %s", printable)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := internal.New(version.Version, cfg, backend.NewLoopback(loopbackDelay))
	return c.Run(ctx)
}

// initializeConfig returns the validated configuration populated from the
// config file, environment variables and command line flags.
func initializeConfig() (*config.Config, error) {
	initial, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}

	bs, err := readConfigFile(initial.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err = mergeConfigBytesIntoViper(bs); err != nil {
		return nil, err
	}

	cfg, err := getConfig(v.AllSettings())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(configPath string) ([]byte, error) {
	isDefault := configPath == ""
	if isDefault {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err != nil {
		if isDefault && os.IsNotExist(err) {
			log.Warnf("no configuration file at %s, skipping", configPath)
			return nil, nil
		}
		return nil, errors.Wrap(err, "error finding configuration file")
	}
	bs, err := os.ReadFile(configPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration file")
	}
	return bs, nil
}

func mergeConfigBytesIntoViper(bs []byte) error {
	if len(bs) == 0 {
		return nil
	}
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml configuration file")
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge configuration to viper")
	}
	return nil
}

func getConfig(configMap map[string]interface{}) (*config.Config, error) {
	cfg := config.DefaultConfig()
	bs, err := json.Marshal(configMap)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal configuration map into json bytes")
	}
	if err = yaml.Unmarshal(bs, cfg); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration")
	}
	return cfg, nil
}
