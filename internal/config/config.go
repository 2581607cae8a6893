package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	grpcpool "github.com/JoeShih716/go-account-statement/pkg/grpc"
	"github.com/JoeShih716/go-account-statement/pkg/logger"
)

// 帳本引擎
const (
	EngineMutex = "mutex"
	EngineLMAX  = "lmax"
)

// DefaultPath 預設設定檔位置
const DefaultPath = "config/config.yaml"

// 可覆寫設定的環境變數
const (
	EnvGRPCAddr      = "LEDGER_GRPC_ADDR"
	EnvHTTPAddr      = "LEDGER_HTTP_ADDR"
	EnvEngine        = "LEDGER_ENGINE"
	EnvSeedFile      = "LEDGER_SEED_FILE"
	EnvLogLevel      = "LEDGER_LOG_LEVEL"
	EnvCurrencyGlyph = "LEDGER_CURRENCY_GLYPH"
	EnvClientTarget  = "LEDGER_CLIENT_TARGET"
)

type Config struct {
	GRPC      GRPCConfig      `yaml:"grpc"`
	HTTP      HTTPConfig      `yaml:"http"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Log       LogConfig       `yaml:"log"`
	Statement StatementConfig `yaml:"statement"`
	Client    ClientConfig    `yaml:"client"`
}

type GRPCConfig struct {
	Addr       string `yaml:"addr"`
	Reflection bool   `yaml:"reflection"` // 方便 grpcurl 等工具測試
}

type HTTPConfig struct {
	Addr    string        `yaml:"addr"`    // 空字串表示不啟動 HTTP
	Timeout time.Duration `yaml:"timeout"` // 單一請求逾時
	Metrics bool          `yaml:"metrics"` // 是否開啟 /metrics
}

type LedgerConfig struct {
	Engine   string `yaml:"engine"`    // mutex 或 lmax
	SeedFile string `yaml:"seed_file"` // 啟動時重放的 JSON lines 檔，可為空
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type StatementConfig struct {
	CurrencyGlyph string `yaml:"currency_glyph"`
	TimeLayout    string `yaml:"time_layout"`
}

type ClientConfig struct {
	Target  string        `yaml:"target"`
	Timeout time.Duration `yaml:"timeout"`
	// Keepalive 閒置連線 ping 間隔，未設定用預設值，負數表示關閉
	Keepalive time.Duration `yaml:"keepalive"`
}

// Default 回傳全部使用預設值的設定
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Load 讀取設定檔，補上預設值後套用環境變數
//
// 參數:
//
//	path: 設定檔路徑
//	optional: true 時檔案不存在視為空設定
//
// 回傳:
//
//	Config: 設定
//	error: 讀取或解析失敗、設定不合法
func Load(path string, optional bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults 補全預設配置 (如果 yaml 沒寫)
func (c *Config) applyDefaults() {
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.Ledger.Engine == "" {
		c.Ledger.Engine = EngineMutex
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Statement.CurrencyGlyph == "" {
		c.Statement.CurrencyGlyph = "€"
	}
	if c.Statement.TimeLayout == "" {
		c.Statement.TimeLayout = "2006-01-02 15:04"
	}
	if c.Client.Target == "" {
		c.Client.Target = "localhost:50051"
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = 5 * time.Second
	}
	if c.Client.Keepalive == 0 {
		c.Client.Keepalive = grpcpool.DefaultKeepalive
	}
}

// applyEnv 環境變數優先於設定檔
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvGRPCAddr, &c.GRPC.Addr},
		{EnvHTTPAddr, &c.HTTP.Addr},
		{EnvEngine, &c.Ledger.Engine},
		{EnvSeedFile, &c.Ledger.SeedFile},
		{EnvLogLevel, &c.Log.Level},
		{EnvCurrencyGlyph, &c.Statement.CurrencyGlyph},
		{EnvClientTarget, &c.Client.Target},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.key); ok {
			*o.target = strings.TrimSpace(v)
		}
	}
}

// Validate 檢查設定
func (c Config) Validate() error {
	var errs []error
	switch c.Ledger.Engine {
	case EngineMutex, EngineLMAX:
	default:
		errs = append(errs, fmt.Errorf("ledger.engine must be %q or %q, got %q", EngineMutex, EngineLMAX, c.Ledger.Engine))
	}
	if strings.TrimSpace(c.GRPC.Addr) == "" {
		errs = append(errs, errors.New("grpc.addr is required"))
	}
	if _, err := logger.Level(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.HTTP.Timeout < 0 || c.Client.Timeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
