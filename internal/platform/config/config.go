package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	PaymentDriverConsole = "console"
	PaymentDriverRedis   = "redis"

	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"

	defaultRedisStream  = "payroll:payments"
	defaultRedisTimeout = 3 * time.Second
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Payment  PaymentConfig  `yaml:"payment"`
	Payroll  PayrollConfig  `yaml:"payroll"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"PAYROLL_LISTEN_ADDR"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Mode string `yaml:"mode" env:"PAYROLL_LOG_MODE"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。Enabled が false の場合はメモリのみで動作します。
type DatabaseConfig struct {
	Enabled            bool          `yaml:"enabled" env:"PAYROLL_DB_ENABLED"`
	Host               string        `yaml:"host" env:"PAYROLL_DB_HOST"`
	Port               int           `yaml:"port" env:"PAYROLL_DB_PORT"`
	User               string        `yaml:"user" env:"PAYROLL_DB_USER"`
	Password           string        `yaml:"password" env:"PAYROLL_DB_PASSWORD"`
	Name               string        `yaml:"name" env:"PAYROLL_DB_NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"PAYROLL_DB_SSL_MODE"`
	IsolationLevel     string        `yaml:"isolation_level" env:"PAYROLL_DB_ISOLATION_LEVEL"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// PaymentConfig は外部決済サービスの設定です。
type PaymentConfig struct {
	Driver string      `yaml:"driver" env:"PAYROLL_PAYMENT_DRIVER"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig は Redis Stream 連携の設定です。
type RedisConfig struct {
	Addr       string        `yaml:"addr" env:"PAYROLL_REDIS_ADDR"`
	Password   string        `yaml:"password" env:"PAYROLL_REDIS_PASSWORD"`
	DB         int           `yaml:"db" env:"PAYROLL_REDIS_DB"`
	Stream     string        `yaml:"stream" env:"PAYROLL_REDIS_STREAM"`
	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

// PayrollConfig は昇給ポリシーの設定です。
type PayrollConfig struct {
	DefaultPolicy    string `yaml:"default_policy" env:"PAYROLL_DEFAULT_POLICY"`
	ExemptContracted bool   `yaml:"exempt_contracted" env:"PAYROLL_EXEMPT_CONTRACTED"`
}

// TracingConfig は OpenTelemetry トレースの設定です。
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" env:"PAYROLL_TRACING_ENABLED"`
	Exporter    string  `yaml:"exporter" env:"PAYROLL_TRACING_EXPORTER"`
	Endpoint    string  `yaml:"endpoint" env:"PAYROLL_TRACING_ENDPOINT"`
	SampleRatio float64 `yaml:"sample_ratio" env:"PAYROLL_TRACING_SAMPLE_RATIO"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if c.Log.Mode == "" {
		c.Log.Mode = "development"
	}

	if c.Database.Enabled {
		if err := c.Database.validateAndNormalize(); err != nil {
			return err
		}
	}

	if err := c.Payment.validateAndNormalize(); err != nil {
		return err
	}

	c.Payroll.DefaultPolicy = strings.ToLower(strings.TrimSpace(c.Payroll.DefaultPolicy))

	if c.Tracing.Enabled {
		if err := c.Tracing.validateAndNormalize(); err != nil {
			return err
		}
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	d.IsolationLevel = strings.ToLower(strings.TrimSpace(d.IsolationLevel))
	switch d.IsolationLevel {
	case "", "read_committed", "repeatable_read", "serializable":
	default:
		return fmt.Errorf("config: database.isolation_level %q is not supported", d.IsolationLevel)
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (p *PaymentConfig) validateAndNormalize() error {
	p.Driver = strings.ToLower(strings.TrimSpace(p.Driver))
	switch p.Driver {
	case "":
		p.Driver = PaymentDriverConsole
	case PaymentDriverConsole:
	case PaymentDriverRedis:
		if p.Redis.Addr == "" {
			return fmt.Errorf("config: payment.redis.addr must be set")
		}
	default:
		return fmt.Errorf("config: payment.driver %q is not supported", p.Driver)
	}

	if p.Redis.Stream == "" {
		p.Redis.Stream = defaultRedisStream
	}

	timeout, err := parseDurationAllowEmpty(p.Redis.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: payment.redis.timeout: %w", err)
	}
	if timeout == 0 {
		timeout = defaultRedisTimeout
	}
	p.Redis.Timeout = timeout

	return nil
}

func (t *TracingConfig) validateAndNormalize() error {
	t.Exporter = strings.ToLower(strings.TrimSpace(t.Exporter))
	switch t.Exporter {
	case "":
		t.Exporter = TracingExporterStdout
	case TracingExporterStdout:
	case TracingExporterOTLP:
		if t.Endpoint == "" {
			return fmt.Errorf("config: tracing.endpoint must be set")
		}
	default:
		return fmt.Errorf("config: tracing.exporter %q is not supported", t.Exporter)
	}

	if t.SampleRatio == 0 {
		t.SampleRatio = 1
	}
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return fmt.Errorf("config: tracing.sample_ratio must be within (0, 1]")
	}

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
