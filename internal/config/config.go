package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	JWT     JWTConfig
	Chain   ChainConfig
	Lottery LotteryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// ChainConfig holds the JSON-RPC endpoint and contract details
type ChainConfig struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	ChainID         int64
}

// LotteryConfig holds lottery scheduling configuration
type LotteryConfig struct {
	DefaultDurationHours int
	CheckInterval        time.Duration
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
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

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "gods-hand")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Chain.RPCURL", "https://testnet.evm.nodes.onflow.org")
	viper.SetDefault("Chain.ContractAddress", "0x700D3D55ec6FC21394A43b02496F320E02873114")
	viper.SetDefault("Chain.ChainID", 545) // Flow EVM testnet
	viper.SetDefault("Lottery.DefaultDurationHours", 72)
	viper.SetDefault("Lottery.CheckInterval", 5*time.Minute)
}
