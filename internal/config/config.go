package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Remote analyzer providers.
const (
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderHTTP   = "http"
)

// Chain modes.
const (
	ChainDisabled  = "disabled"
	ChainSimulated = "simulated"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		CORSOrigins     []string      `yaml:"corsOrigins"`
		// APIKeys maps a client name to its key. Empty disables auth.
		APIKeys   map[string]string `yaml:"apiKeys"`
		RateLimit struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Storage struct {
		Driver       string `yaml:"driver"`
		Path         string `yaml:"path"`
		HistoryLimit int    `yaml:"historyLimit"`
		PersistLimit int    `yaml:"persistLimit"`
		MarketLimit  int    `yaml:"marketLimit"`
	} `yaml:"storage"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool          `yaml:"enabled"`
		Endpoint   string        `yaml:"endpoint"`
		AccessKey  string        `yaml:"accessKey"`
		SecretKey  string        `yaml:"secretKey"`
		BucketName string        `yaml:"bucketName"`
		Region     string        `yaml:"region"`
		UseSSL     bool          `yaml:"useSSL"`
		Prefix     string        `yaml:"prefix"`
		PresignTTL time.Duration `yaml:"presignTTL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseURL"`
	} `yaml:"openai"`

	Analysis struct {
		RemoteProvider   string        `yaml:"remoteProvider"`
		RemoteEndpoint   string        `yaml:"remoteEndpoint"`
		RemoteTimeout    time.Duration `yaml:"remoteTimeout"`
		FetchTimeout     time.Duration `yaml:"fetchTimeout"`
		BasicDelay       DelayRange    `yaml:"basicDelay"`
		ConsensusDelay   DelayRange    `yaml:"consensusDelay"`
		Seed             int64         `yaml:"seed"`
		BatchConcurrency int           `yaml:"batchConcurrency"`
	} `yaml:"analysis"`

	Chain struct {
		Mode string `yaml:"mode"`
		Seed string `yaml:"seed"`
	} `yaml:"chain"`
}

// DelayRange is the simulated latency window of one scorer.
type DelayRange struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Load baca file config.yaml, apply defaults dan validasi
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default config without a file.
func Default() *Config {
	var cfg Config
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg
}

// secrets boleh dari env supaya tidak masuk file
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" && c.Minio.SecretKey == "" {
		c.Minio.SecretKey = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" && c.Database.Password == "" {
		c.Database.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// consensus + remote calls can take a while
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 60
	}
	if c.Server.RateLimit.RefillRate == 0 {
		c.Server.RateLimit.RefillRate = 1
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverFile
	}
	if c.Storage.Path == "" {
		if c.Storage.Driver == DriverSQLite {
			c.Storage.Path = "data/sentichain.db"
		} else {
			c.Storage.Path = "data"
		}
	}
	if c.Storage.HistoryLimit == 0 {
		c.Storage.HistoryLimit = 50
	}
	if c.Storage.PersistLimit == 0 {
		c.Storage.PersistLimit = 30
	}
	if c.Storage.MarketLimit == 0 {
		c.Storage.MarketLimit = 50
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Port == 0 {
		switch c.Storage.Driver {
		case DriverPostgres:
			c.Database.Port = 5432
		default:
			c.Database.Port = 3306
		}
	}

	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "sentichain-chats"
	}

	if c.Analysis.RemoteProvider == "" {
		switch {
		case c.Analysis.RemoteEndpoint != "":
			c.Analysis.RemoteProvider = ProviderHTTP
		case c.OpenAI.APIKey != "":
			c.Analysis.RemoteProvider = ProviderOpenAI
		default:
			c.Analysis.RemoteProvider = ProviderNone
		}
	}
	if c.Analysis.RemoteTimeout == 0 {
		c.Analysis.RemoteTimeout = 30 * time.Second
	}
	if c.Analysis.FetchTimeout == 0 {
		c.Analysis.FetchTimeout = 5 * time.Second
	}
	if c.Analysis.BasicDelay == (DelayRange{}) {
		c.Analysis.BasicDelay = DelayRange{Min: 500 * time.Millisecond, Max: 1000 * time.Millisecond}
	}
	if c.Analysis.ConsensusDelay == (DelayRange{}) {
		c.Analysis.ConsensusDelay = DelayRange{Min: 1500 * time.Millisecond, Max: 2500 * time.Millisecond}
	}
	if c.Analysis.BatchConcurrency == 0 {
		c.Analysis.BatchConcurrency = 4
	}

	if c.Chain.Mode == "" {
		c.Chain.Mode = ChainDisabled
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	case DriverMySQL, DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.host and database.name are required for %s", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be one of file, sqlite, mysql, postgres", c.Storage.Driver))
	}
	if c.Storage.PersistLimit > c.Storage.HistoryLimit {
		errs = append(errs, fmt.Errorf("storage.persistLimit %d exceeds storage.historyLimit %d", c.Storage.PersistLimit, c.Storage.HistoryLimit))
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.AccessKey == "") {
		errs = append(errs, errors.New("minio.endpoint and minio.accessKey are required when minio is enabled"))
	}
	switch c.Analysis.RemoteProvider {
	case ProviderNone:
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("openai.apiKey is required for the openai remote provider"))
		}
	case ProviderHTTP:
		if u, err := url.Parse(c.Analysis.RemoteEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("analysis.remoteEndpoint %q is not a valid URL", c.Analysis.RemoteEndpoint))
		}
	default:
		errs = append(errs, fmt.Errorf("analysis.remoteProvider %q must be one of none, openai, http", c.Analysis.RemoteProvider))
	}
	for _, r := range []struct {
		name string
		d    DelayRange
	}{{"basicDelay", c.Analysis.BasicDelay}, {"consensusDelay", c.Analysis.ConsensusDelay}} {
		if r.d.Min < 0 || r.d.Max < r.d.Min {
			errs = append(errs, fmt.Errorf("analysis.%s needs 0 <= min <= max", r.name))
		}
	}
	switch c.Chain.Mode {
	case ChainDisabled, ChainSimulated:
	default:
		errs = append(errs, fmt.Errorf("chain.mode %q must be disabled or simulated", c.Chain.Mode))
	}
	return errors.Join(errs...)
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
