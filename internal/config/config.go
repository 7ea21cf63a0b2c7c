package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type AuthCfg struct {
	JWTSecret       string
	AccessTTLMin    int
	RefreshTTLDays  int
	CookieDomain    string
	CookieSecure    bool
	RefreshTokenLen int
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQCfg struct {
	URL   string
	Queue string
}

type S3Cfg struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	Bucket           string
	UsePathStyle     bool
	PresignExpireSec int
	SSE              string
}

type OpenAICfg struct {
	APIKey     string
	BaseURL    string
	Model      string
	TimeoutSec int
}

type TasksCfg struct {
	// Minutes after which a stuck pending lease may be reclaimed.
	LeaseTTLMin int
	// Generation requests per user per minute.
	RateLimitPerMin int
}

type CalendarCfg struct {
	Name            string
	DefaultTimezone string
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type Config struct {
	App       AppCfg
	Auth      AuthCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	OpenAI    OpenAICfg
	Tasks     TasksCfg
	Calendar  CalendarCfg
	Telemetry TelemetryCfg
}

func Load() (*Config, error) {
	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("UPKEEP") // e.g. UPKEEP_APP_PORT -> app.port

	// Defaults apply whether or not a file is present.
	setDefaults(base)

	// Read the file (if any), expanding ${ENV} references before parsing.
	if err := base.ReadInConfig(); err == nil {
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		expanded := os.ExpandEnv(string(raw))

		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, err
		}
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetEnvPrefix("UPKEEP")
		setDefaults(v)

		cfg := new(Config)
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// No file is fine too: env + defaults only.
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "upkeep")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("auth.accessTTLMin", 15)
	v.SetDefault("auth.refreshTTLDays", 30)
	v.SetDefault("auth.refreshTokenLen", 48)
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.presignExpireSec", 900)
	v.SetDefault("rabbitmq.queue", "tasks_generated")
	v.SetDefault("openai.baseURL", "https://api.openai.com")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeoutSec", 60)
	v.SetDefault("tasks.leaseTTLMin", 10)
	v.SetDefault("tasks.rateLimitPerMin", 10)
	v.SetDefault("calendar.name", "Upkeep")
	v.SetDefault("calendar.defaultTimezone", "")
	v.SetDefault("telemetry.sampleRatio", 1.0)
}
