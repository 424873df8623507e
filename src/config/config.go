package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapLaunchpad/src/logger/xzap"
	"github.com/ProjectsTask/EasySwapLaunchpad/src/stores/gdb"
)

// Config 定义了应用程序的全局配置结构
type Config struct {
	Api         Api                `toml:"api" mapstructure:"api" json:"api"`                         // HTTP 服务配置
	Monitor     Monitor            `toml:"monitor" mapstructure:"monitor" json:"monitor"`             // 监控相关配置
	Log         xzap.LogConf       `toml:"log" mapstructure:"log" json:"log"`                         // 日志配置
	Kv          KvConf             `toml:"kv" mapstructure:"kv" json:"kv"`                            // KV存储配置 (Redis)
	DB          gdb.Config         `toml:"db" mapstructure:"db" json:"db"`                            // 数据库配置 (MySQL)
	Signer      SignerCfg          `toml:"signer" mapstructure:"signer" json:"signer"`                // 签名服务配置
	Launchpad   LaunchpadCfg       `toml:"launchpad" mapstructure:"launchpad" json:"launchpad"`       // Launchpad 进度缓存配置
	Policy      PolicyCfg          `toml:"policy" mapstructure:"policy" json:"policy"`                // 售卖策略
	Collections []CollectionPolicy `toml:"collections" mapstructure:"collections" json:"collections"` // 静态集合目录
}

// Api 定义 HTTP 服务配置
type Api struct {
	Port         string `toml:"port" mapstructure:"port" json:"port"`                               // 监听地址, 如 ":9000"
	MaxBodyBytes int64  `toml:"max_body_bytes" mapstructure:"max_body_bytes" json:"max_body_bytes"` // 请求体上限
}

// Monitor 定义监控配置
type Monitor struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"` // 是否开启 Pprof
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`       // Pprof 监听端口
}

// SignerCfg 定义签名服务 (signing agent) 的连接配置
type SignerCfg struct {
	Endpoint       string `toml:"endpoint" mapstructure:"endpoint" json:"endpoint"`                               // 签名服务地址
	AddressTimeout int64  `toml:"address_timeout_ms" mapstructure:"address_timeout_ms" json:"address_timeout_ms"` // 获取卖家地址超时 (毫秒)
	SettleTimeout  int64  `toml:"settle_timeout_ms" mapstructure:"settle_timeout_ms" json:"settle_timeout_ms"`    // 结算超时 (毫秒)
}

// LaunchpadCfg 定义进度缓存配置
type LaunchpadCfg struct {
	CacheTTLSeconds   int    `toml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds" json:"cache_ttl_seconds"`                // 边缘缓存 TTL
	CacheWriteTimeout int64  `toml:"cache_write_timeout_ms" mapstructure:"cache_write_timeout_ms" json:"cache_write_timeout_ms"` // 后台写缓存超时 (毫秒)
	CacheBackend      string `toml:"cache_backend" mapstructure:"cache_backend" json:"cache_backend"`                            // redis 或 memory
}

// PolicyCfg 定义对外展示的售卖策略
type PolicyCfg struct {
	Name        string `toml:"name" mapstructure:"name" json:"name"`
	Description string `toml:"description" mapstructure:"description" json:"description"`
	FeeRate     string `toml:"fee_rate" mapstructure:"fee_rate" json:"fee_rate"`
}

// CollectionPolicy 定义一个集合的静态描述
// 三种总量来源只能配置其一: gallery / parent / 显式列表
type CollectionPolicy struct {
	Slug                 string   `toml:"slug" mapstructure:"slug" json:"slug"`
	Title                string   `toml:"title" mapstructure:"title" json:"title"`
	IsLaunchpad          bool     `toml:"is_launchpad" mapstructure:"is_launchpad" json:"is_launchpad"`
	GalleryInscriptionID string   `toml:"gallery_inscription_id" mapstructure:"gallery_inscription_id" json:"gallery_inscription_id"`
	ParentInscriptionID  string   `toml:"parent_inscription_id" mapstructure:"parent_inscription_id" json:"parent_inscription_id"`
	InscriptionIDs       []string `toml:"inscription_ids" mapstructure:"inscription_ids" json:"inscription_ids"`
}

// KvConf 定义 Key-Value 存储配置
type KvConf struct {
	Redis []*Redis `toml:"redis" mapstructure:"redis" json:"redis"` // Redis 列表（可能支持多实例）
}

// Redis 定义 Redis 连接配置
type Redis struct {
	Host string `toml:"host" mapstructure:"host" json:"host"` // Redis 主机地址
	Type string `toml:"type" mapstructure:"type" json:"type"` // Redis 类型 (node, cluster)
	Pass string `toml:"pass" mapstructure:"pass" json:"pass"` // Redis 密码
}

// UnmarshalConfig 加载并解析指定路径的配置文件
// @params configFilePath: 配置文件路径
func UnmarshalConfig(configFilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFilePath) // 设置配置文件路径
	v.SetConfigType("toml")         // 设置配置文件类型为 TOML
	return unmarshal(v)
}

// UnmarshalCmdConfig 使用 cobra 初始化时设置好的全局 viper 实例解析配置
func UnmarshalCmdConfig() (*Config, error) {
	return unmarshal(viper.GetViper())
}

func unmarshal(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()            // 自动读取环境变量
	v.SetEnvPrefix("LAUNCHPAD") // 设置环境变量前缀，如 LAUNCHPAD_DB_HOST
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer) // 替换 key 中的 . 为 _

	if err := v.ReadInConfig(); err != nil { // 读取配置
		return nil, err
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil { // 解析到结构体
		return nil, err
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
