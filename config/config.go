package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/otterhq/intent-sdk-go/client"
	"github.com/otterhq/intent-sdk-go/services"
	"github.com/otterhq/intent-sdk-go/token"
)

// 应用配置：网络端点、合约包、池表、策略上限、分类服务
//
// YAML 文件加载，缺省字段回落到默认值。SDK 库代码不读文件，
// 这个包服务于 CLI 与示例的装配。

// Config 顶层配置
type Config struct {
	Network    Network    `yaml:"network"`
	Classifier Classifier `yaml:"classifier"`
	Contracts  Contracts  `yaml:"contracts"`
	Pools      []Pool     `yaml:"pools"`
	Limits     Limits     `yaml:"limits"`
	Debug      bool       `yaml:"debug"`
}

// Network 结算层连接配置
type Network struct {
	Endpoint       string `yaml:"endpoint"`
	Protocol       string `yaml:"protocol"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Classifier 分类服务配置
type Classifier struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Contracts 合约包配置
type Contracts struct {
	VenuePackage string `yaml:"venuePackage"`
	AuthPackage  string `yaml:"authPackage"`
}

// Pool 交易池登记项（两侧用代币符号表示，装配时解析为类型标签）
type Pool struct {
	ObjectID string `yaml:"objectId"`
	TokenX   string `yaml:"tokenX"`
	TokenY   string `yaml:"tokenY"`
}

// Limits 策略上限
type Limits struct {
	MaxAmount      string  `yaml:"maxAmount"`
	MaxSlippageBps uint64  `yaml:"maxSlippageBps"`
	MaxActions     int     `yaml:"maxActions"`
	MinConfidence  float64 `yaml:"minConfidence"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Network: Network{
			Endpoint:       "http://localhost:9000",
			Protocol:       string(client.ProtocolHTTP),
			TimeoutSeconds: 30,
		},
		Classifier: Classifier{
			Endpoint:       "http://localhost:8080/classify",
			TimeoutSeconds: 30,
		},
	}
}

// Load 从 YAML 文件加载配置，缺省字段回落到默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}
	if cfg.Network.Endpoint == "" {
		cfg.Network.Endpoint = Default().Network.Endpoint
	}
	if cfg.Network.Protocol == "" {
		cfg.Network.Protocol = string(client.ProtocolHTTP)
	}
	if cfg.Network.TimeoutSeconds <= 0 {
		cfg.Network.TimeoutSeconds = 30
	}
	return cfg, nil
}

// ClientConfig 换算为结算层客户端配置
func (c *Config) ClientConfig(logger client.Logger) *client.Config {
	return &client.Config{
		Endpoint: c.Network.Endpoint,
		Protocol: client.Protocol(c.Network.Protocol),
		Timeout:  c.Network.TimeoutSeconds,
		Debug:    c.Debug,
		Logger:   logger,
	}
}

// ServicesConfig 换算为业务服务配置（池表符号解析为类型标签）
func (c *Config) ServicesConfig() (*services.Config, error) {
	pools := make([]services.PoolEntry, 0, len(c.Pools))
	for _, p := range c.Pools {
		x, err := token.Resolve(p.TokenX)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.ObjectID, err)
		}
		y, err := token.Resolve(p.TokenY)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.ObjectID, err)
		}
		pools = append(pools, services.PoolEntry{
			ObjectID: p.ObjectID,
			TokenX:   x.TypeTag,
			TokenY:   y.TypeTag,
		})
	}
	return &services.Config{
		VenuePackageID: c.Contracts.VenuePackage,
		AuthPackageID:  c.Contracts.AuthPackage,
		Pools:          pools,
		Limits: services.PolicyLimits{
			MaxAmount:      c.Limits.MaxAmount,
			MaxSlippageBps: c.Limits.MaxSlippageBps,
			MaxActions:     c.Limits.MaxActions,
			MinConfidence:  c.Limits.MinConfidence,
		},
	}, nil
}
