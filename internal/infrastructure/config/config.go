package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Neo4J    Neo4JConfig    `mapstructure:"neo4j"`
	Solana   SolanaConfig   `mapstructure:"solana"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Health   HealthConfig   `mapstructure:"health"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig represents application-specific configuration.
type AppConfig struct {
	Env            string `mapstructure:"env"`
	LogLevel       string `mapstructure:"log_level"`
	HTTPPort       int    `mapstructure:"http_port"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
	BatchSize      int    `mapstructure:"batch_size"`
}

// NATSConfig represents the transfer-event consumer configuration.
type NATSConfig struct {
	URL                string        `mapstructure:"url"`
	StreamName         string        `mapstructure:"stream_name"`
	SubjectPrefix      string        `mapstructure:"subject_prefix"`
	ConsumerGroup      string        `mapstructure:"consumer_group"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts  int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay     time.Duration `mapstructure:"reconnect_delay"`
	MaxPendingMessages int           `mapstructure:"max_pending_messages"`
	Enabled            bool          `mapstructure:"enabled"`
}

// Neo4JConfig represents graph persistence configuration.
type Neo4JConfig struct {
	URI                          string        `mapstructure:"uri"`
	Username                     string        `mapstructure:"username"`
	Password                     string        `mapstructure:"password"`
	Database                     string        `mapstructure:"database"`
	ConnectTimeout               time.Duration `mapstructure:"connect_timeout"`
	MaxConnectionPoolSize        int           `mapstructure:"max_connection_pool_size"`
	ConnectionAcquisitionTimeout time.Duration `mapstructure:"connection_acquisition_timeout"`
	Enabled                      bool          `mapstructure:"enabled"`
}

// SolanaConfig represents the RPC acquisition collaborator configuration.
type SolanaConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	Network        string        `mapstructure:"network"`
	PageSize       int           `mapstructure:"page_size"`
	MaxPages       int           `mapstructure:"max_pages"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Enabled        bool          `mapstructure:"enabled"`
}

// AnalysisConfig tunes the analytics pipeline.
type AnalysisConfig struct {
	LargeAmountThreshold float64 `mapstructure:"large_amount_threshold"`
	SOLPriceUSD          float64 `mapstructure:"sol_price_usd"`
	MaxTransfers         int     `mapstructure:"max_transfers"`
}

// HealthConfig represents health check configuration.
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from environment variables and files.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/solana-wallet-forensics")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.http_port", 8080)
	viper.SetDefault("app.worker_pool_size", 4)
	viper.SetDefault("app.batch_size", 200)

	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.stream_name", "TRANSFERS")
	viper.SetDefault("nats.subject_prefix", "transfers")
	viper.SetDefault("nats.consumer_group", "wallet-forensics")
	viper.SetDefault("nats.connect_timeout", "10s")
	viper.SetDefault("nats.reconnect_attempts", 5)
	viper.SetDefault("nats.reconnect_delay", "2s")
	viper.SetDefault("nats.max_pending_messages", 10000)
	viper.SetDefault("nats.enabled", true)

	viper.SetDefault("neo4j.uri", "neo4j://localhost:7687")
	viper.SetDefault("neo4j.username", "neo4j")
	viper.SetDefault("neo4j.password", "password")
	viper.SetDefault("neo4j.database", "neo4j")
	viper.SetDefault("neo4j.connect_timeout", "10s")
	viper.SetDefault("neo4j.max_connection_pool_size", 50)
	viper.SetDefault("neo4j.connection_acquisition_timeout", "60s")
	viper.SetDefault("neo4j.enabled", true)

	viper.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("solana.network", "mainnet")
	viper.SetDefault("solana.page_size", 100)
	viper.SetDefault("solana.max_pages", 10)
	viper.SetDefault("solana.request_delay", "600ms")
	viper.SetDefault("solana.max_retries", 3)
	viper.SetDefault("solana.request_timeout", "30s")
	viper.SetDefault("solana.enabled", false)

	viper.SetDefault("analysis.large_amount_threshold", 1000.0)
	viper.SetDefault("analysis.sol_price_usd", 0.0)
	viper.SetDefault("analysis.max_transfers", 1000)

	viper.SetDefault("health.interval", "30s")
	viper.SetDefault("health.timeout", "5s")

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)

	viper.BindEnv("nats.url", "NATS_URL")
	viper.BindEnv("solana.rpc_url", "SOLANA_RPC_URL")
}
