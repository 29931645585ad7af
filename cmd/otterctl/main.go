package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/config"
	"github.com/otterhq/intent-sdk-go/logging"
	"github.com/otterhq/intent-sdk-go/services"
)

var (
	flagConfig string
	flagDebug  bool
)

func main() {
	root := &cobra.Command{
		Use:          "otterctl",
		Short:        "Intent compiler CLI: compile intents, inspect balances and authorizations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newBalancesCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newClassifyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime CLI 运行时装配：配置、日志器、客户端、业务配置
type runtime struct {
	cfg    *config.Config
	svcCfg *services.Config
	client client.Client
	logger client.Logger
}

// setup 加载配置并建立连接
func setup() (*runtime, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagDebug {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger failed: %w", err)
	}

	svcCfg, err := cfg.ServicesConfig()
	if err != nil {
		return nil, err
	}

	c, err := client.NewClient(cfg.ClientConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("connect to node failed: %w", err)
	}

	return &runtime{cfg: cfg, svcCfg: svcCfg, client: c, logger: logger}, nil
}

func (r *runtime) close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}
