package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"medkit/internal/config"
	"medkit/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "medkit",
	Short: "MedKit - Clinical Records & AI Assistant Service",
	Long: `MedKit is a clinical record-keeping API service.
Doctors manage patients, prescriptions, lab reports and nursing staff,
and consult an embedded local medical model through the chat API.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.medkit")
	}

	// 环境变量设置
	viper.SetEnvPrefix("MEDKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	// AI
	viper.SetDefault("ai.provider", "local")
	viper.SetDefault("ai.model", "meditron")
	viper.SetDefault("ai.base_url", "http://localhost:11434/v1")
	viper.SetDefault("ai.options.temperature", 0.2)
	viper.SetDefault("ai.options.max_tokens", 2048)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Chat
	viper.SetDefault("chat.max_context_turns", 20)
	viper.SetDefault("chat.max_context_tokens", 3000)
	viper.SetDefault("chat.inference_timeout", "60s")
	viper.SetDefault("chat.system_prompt",
		"You are a clinical assistant for licensed physicians. "+
			"Answer concisely and flag uncertainty explicitly.")

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "medkit")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)

	// Redis
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	// Auth
	viper.SetDefault("auth.access_token_expiry", "24h")
	viper.SetDefault("auth.refresh_token_expiry", "168h")

	// Storage
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.base_path", "./data/storage")
	viper.SetDefault("storage.local.base_url", "http://localhost:8080/storage")
	viper.SetDefault("storage.local.presign_expiry", 3600)
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
