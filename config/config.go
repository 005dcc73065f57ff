package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	JwtSecretKey    string `toml:"jwt_secret_key"`
	JwtExpireHours  int    `toml:"jwt_expire_hours"`
}

type LlmConfig struct {
	// DeepSeek 和通义千问都走 OpenAI 兼容接口
	DeepseekBaseUrl string `toml:"deepseek_base_url"`
	DeepseekApiKey  string `toml:"deepseek_api_key"`
	QwenBaseUrl     string `toml:"qwen_base_url"`
	QwenApiKey      string `toml:"qwen_api_key"`
}

type GrsaiConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

type JimengConfig struct {
	AccessKeyId     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	BaseUrl         string `toml:"base_url"`
	Region          string `toml:"region"`
}

type OssConfig struct {
	AccessKeyId     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Endpoint        string `toml:"endpoint"`
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	PublicRead      bool   `toml:"public_read"`
	UrlExpireSec    int64  `toml:"url_expire_seconds"`
	MaxFileSize     int64  `toml:"max_file_size"`
}

type QueueConfig struct {
	// mode: memory（进程内 taskrunner）或 redis（asynq）
	Mode          string `toml:"mode"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Llm      LlmConfig      `toml:"llm"`
	Grsai    GrsaiConfig    `toml:"grsai"`
	Jimeng   JimengConfig   `toml:"jimeng"`
	Oss      OssConfig      `toml:"oss"`
	Queue    QueueConfig    `toml:"queue"`
}

var Conf Config

// resolveConfigPath is swappable in tests.
var resolveConfigPath = defaultConfigPath

func defaultConfigPath() (string, error) {
	return filepath.Join("config", "config.toml"), nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Database: DatabaseConfig{
			Path: filepath.Join("data", "storyframe.db"),
		},
		Auth: AuthConfig{
			JwtExpireHours: 24,
		},
		Llm: LlmConfig{
			DeepseekBaseUrl: "https://api.deepseek.com/v1",
			QwenBaseUrl:     "https://dashscope.aliyuncs.com/compatible-mode/v1",
		},
		Grsai: GrsaiConfig{
			BaseUrl: "https://grsai.dakka.com.cn",
		},
		Jimeng: JimengConfig{
			BaseUrl: "https://visual.volcengineapi.com",
			Region:  "cn-north-1",
		},
		Oss: OssConfig{
			Endpoint:     "https://oss-cn-shanghai.aliyuncs.com",
			Region:       "cn-shanghai",
			PublicRead:   true,
			UrlExpireSec: 3600,
			MaxFileSize:  50 * 1024 * 1024,
		},
		Queue: QueueConfig{
			Mode:        "memory",
			RedisAddr:   "localhost:6379",
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig reads the config file, writing the defaults first when it
// is missing. The returned bool reports whether a new file was created.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		loadEnvOverrides()
		if err = SaveConfig(); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("解析配置文件失败: %w", err)
	}
	loadEnvOverrides()
	return false, nil
}

// LoadConfig is the boolean wrapper used at startup.
func LoadConfig() bool {
	if _, err := LoadOrCreateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败 failed to load config: %v\n", err)
		return false
	}
	return true
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(Conf)
}

// loadEnvOverrides applies credential environment variables on top of the
// file. Secrets are expected to come from the environment in deployment.
func loadEnvOverrides() {
	setIfEnv(&Conf.Auth.JwtSecretKey, "JWT_SECRET_KEY")
	setIfEnv(&Conf.Llm.DeepseekApiKey, "DEEPSEEK_API_KEY")
	setIfEnv(&Conf.Llm.QwenApiKey, "DASHSCOPE_API_KEY")
	setIfEnv(&Conf.Grsai.ApiKey, "GRSAI_KEY")
	setIfEnv(&Conf.Jimeng.AccessKeyId, "VOLC_ACCESS_KEY_ID")
	setIfEnv(&Conf.Jimeng.SecretAccessKey, "VOLC_SECRET_ACCESS_KEY")
	setIfEnv(&Conf.Oss.AccessKeyId, "OSS_ACCESS_KEY_ID")
	setIfEnv(&Conf.Oss.AccessKeySecret, "OSS_ACCESS_KEY_SECRET")
	setIfEnv(&Conf.Oss.Bucket, "OSS_BUCKET_NAME")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", Conf.Server.Port)
	}
	if Conf.Auth.JwtSecretKey == "" {
		return errors.New("JWT密钥未配置，请设置 JWT_SECRET_KEY 环境变量 JWT secret not configured")
	}
	if len(Conf.Auth.JwtSecretKey) < 32 {
		return fmt.Errorf("JWT密钥长度不足（当前%d字符，要求至少32字符）JWT secret too short", len(Conf.Auth.JwtSecretKey))
	}
	if Conf.Queue.Mode != "memory" && Conf.Queue.Mode != "redis" {
		return fmt.Errorf("无效的队列模式: %s", Conf.Queue.Mode)
	}
	return nil
}
