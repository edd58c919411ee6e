package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lukelzlz/rst/pkg/codec"
	"github.com/lukelzlz/rst/pkg/digest"
	"github.com/lukelzlz/rst/pkg/logging"
	"github.com/lukelzlz/rst/pkg/progress"
	"github.com/lukelzlz/rst/pkg/storage"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "RST"

// Config 配置结构
type Config struct {
	Transfer TransferConfig `mapstructure:"transfer" yaml:"transfer"`
	Progress ProgressConfig `mapstructure:"progress" yaml:"progress"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Mirror   MirrorConfig   `mapstructure:"mirror" yaml:"mirror"`
}

// TransferConfig 传输配置
type TransferConfig struct {
	Port         int           `mapstructure:"port" yaml:"port"`
	Compress     bool          `mapstructure:"compress" yaml:"compress"` // 默认是否压缩
	Codec        string        `mapstructure:"codec" yaml:"codec"`       // 启用压缩时使用的算法：gzip, zstd
	Level        int           `mapstructure:"level" yaml:"level"`       // 0 为算法默认级别
	Digest       string        `mapstructure:"digest" yaml:"digest"`     // sha256, blake2b
	DialTimeout  time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout" yaml:"drain_timeout"` // 发送端半关闭后等待对端关闭的时间，必须大于 0
}

// ProgressConfig 进度显示配置
type ProgressConfig struct {
	Style string `mapstructure:"style" yaml:"style"` // classic, rich, none
	Width int    `mapstructure:"width" yaml:"width"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// MirrorConfig 接收完成后上传到对象存储的配置
type MirrorConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Provider     string `mapstructure:"provider" yaml:"provider"` // aws, qiniu, aliyun
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint"`
	Region       string `mapstructure:"region" yaml:"region"`
	Bucket       string `mapstructure:"bucket" yaml:"bucket"`
	AccessKey    string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey    string `mapstructure:"secret_key" yaml:"secret_key"`
	Prefix       string `mapstructure:"prefix" yaml:"prefix"`
	StorageClass string `mapstructure:"storage_class" yaml:"storage_class"`
	PathStyle    bool   `mapstructure:"path_style" yaml:"path_style"`
}

// LoadConfig 加载配置
//
// 优先级：环境变量 > 配置文件 > 默认值。命令行参数由调用方在之后覆盖。
func LoadConfig(configPath, envPath string) (*Config, error) {
	// 加载 .env 文件
	if err := loadEnvFile(envPath); err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".rst")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.AddConfigPath("$HOME/.config/rst")
	}

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在不是错误，使用默认值
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Default 返回只包含默认值的配置
func Default() *Config {
	var cfg Config
	_ = newViper().Unmarshal(&cfg)
	return &cfg
}

// Path 返回实际使用的配置文件路径，未找到时为空
func Path(configPath string) string {
	if configPath != "" {
		return configPath
	}
	home, _ := os.UserHomeDir()
	for _, p := range []string{
		".rst.yaml",
		filepath.Join(home, ".rst.yaml"),
		filepath.Join(home, ".config", "rst", ".rst.yaml"),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	// 绑定环境变量，如 RST_TRANSFER_PORT
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadEnvFile 加载 .env 文件
func loadEnvFile(envPath string) error {
	if envPath != "" {
		return godotenv.Load(envPath)
	}

	paths := []string{
		".rst.env",
		filepath.Join(os.Getenv("HOME"), ".rst.env"),
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return godotenv.Load(path)
		}
	}

	return nil
}

// setDefaults 设置默认值
//
// 每个键都需要注册默认值，否则 AutomaticEnv 的覆盖不会进入 Unmarshal。
func setDefaults(v *viper.Viper) {
	v.SetDefault("transfer.port", 7777)
	v.SetDefault("transfer.compress", false)
	v.SetDefault("transfer.codec", string(codec.Gzip))
	v.SetDefault("transfer.level", codec.DefaultLevel)
	v.SetDefault("transfer.digest", string(digest.Default))
	v.SetDefault("transfer.dial_timeout", 10*time.Second)
	v.SetDefault("transfer.drain_timeout", 5*time.Second)

	v.SetDefault("progress.style", string(progress.StyleClassic))
	v.SetDefault("progress.width", progress.DefaultWidth)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")

	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.provider", "aws")
	v.SetDefault("mirror.endpoint", "")
	v.SetDefault("mirror.region", "us-east-1")
	v.SetDefault("mirror.bucket", "")
	v.SetDefault("mirror.access_key", "")
	v.SetDefault("mirror.secret_key", "")
	v.SetDefault("mirror.prefix", "")
	v.SetDefault("mirror.storage_class", "standard")
	v.SetDefault("mirror.path_style", false)
}

// GetAccessKey 获取 Access Key（优先级：配置 > 环境变量）
func (c *Config) GetAccessKey() string {
	if c.Mirror.AccessKey != "" {
		return c.Mirror.AccessKey
	}
	if key := os.Getenv("RST_ACCESS_KEY"); key != "" {
		return key
	}
	return os.Getenv("AWS_ACCESS_KEY_ID")
}

// GetSecretKey 获取 Secret Key（优先级：配置 > 环境变量）
func (c *Config) GetSecretKey() string {
	if c.Mirror.SecretKey != "" {
		return c.Mirror.SecretKey
	}
	if key := os.Getenv("RST_SECRET_KEY"); key != "" {
		return key
	}
	return os.Getenv("AWS_SECRET_ACCESS_KEY")
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Transfer.Port < 0 || c.Transfer.Port > 65535 {
		return fmt.Errorf("transfer port out of range: %d", c.Transfer.Port)
	}
	algo, err := codec.ParseAlgorithm(c.Transfer.Codec)
	if err != nil {
		return fmt.Errorf("transfer codec: %w", err)
	}
	if _, err := codec.NewTransform(algo, c.Transfer.Level); err != nil {
		return fmt.Errorf("transfer level: %w", err)
	}
	if _, err := digest.ParseAlgorithm(c.Transfer.Digest); err != nil {
		return fmt.Errorf("transfer digest: %w", err)
	}
	if c.Transfer.DialTimeout < 0 {
		return fmt.Errorf("transfer dial timeout must not be negative")
	}
	if c.Transfer.DrainTimeout <= 0 {
		return fmt.Errorf("transfer drain timeout must be positive: %s", c.Transfer.DrainTimeout)
	}

	if _, err := progress.ParseStyle(c.Progress.Style); err != nil {
		return err
	}
	if c.Progress.Width < 1 || c.Progress.Width > 200 {
		return fmt.Errorf("progress width out of range: %d", c.Progress.Width)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Mirror.Enabled {
		if err := c.ValidateMirror(); err != nil {
			return err
		}
	}

	return nil
}

// ValidateMirror 验证对象存储配置
func (c *Config) ValidateMirror() error {
	switch strings.ToLower(c.Mirror.Provider) {
	case "aws", "qiniu", "aliyun":
	default:
		return fmt.Errorf("unsupported mirror provider: %s", c.Mirror.Provider)
	}

	if c.Mirror.Bucket == "" {
		return fmt.Errorf("mirror bucket is required")
	}
	if c.GetAccessKey() == "" {
		return fmt.Errorf("mirror access_key is required")
	}
	if c.GetSecretKey() == "" {
		return fmt.Errorf("mirror secret_key is required")
	}
	if strings.EqualFold(c.Mirror.Provider, "qiniu") && c.Mirror.Endpoint == "" {
		return fmt.Errorf("mirror endpoint is required for qiniu")
	}
	if _, err := storage.ParseStorageClass(c.Mirror.StorageClass); err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

// Masked 返回隐藏密钥后的副本，用于展示
func (c *Config) Masked() *Config {
	masked := *c
	masked.Mirror.AccessKey = mask(c.Mirror.AccessKey)
	masked.Mirror.SecretKey = mask(c.Mirror.SecretKey)
	return &masked
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

// SaveConfig 保存配置到文件，文件已存在时返回错误
func SaveConfig(cfg *Config, configPath string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("transfer", cfg.Transfer)
	v.Set("progress", cfg.Progress)
	v.Set("log", cfg.Log)
	v.Set("mirror", cfg.Mirror)

	if err := v.SafeWriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
