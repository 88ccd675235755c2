package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"sentinel-bot/models"
)

// LoadConfig 从多个源加载配置：.env 文件、config.yaml、以及 ./config/ 目录下的 JSON 文件。
// 配置加载顺序:
// 1. .env 文件 (用于环境变量)
// 2. config.yaml (基础配置)
// 3. config/security_config.json (合并到主配置)
// 环境变量会覆盖配置文件中的同名设置。
func LoadConfig() {
	// 1. 从 .env 文件加载环境变量，如果文件不存在则忽略。
	if err := godotenv.Load(); err != nil {
		log.Printf("未找到 .env 文件，将跳过加载。")
	}

	// 2. 设置并读取基础配置文件 (config.yaml)。
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 配置文件未找到是正常情况，可以继续。
			log.Printf("未找到基础配置文件 (config.yaml)，将仅使用环境变量和后续合并的配置。")
		} else {
			panic(fmt.Errorf("解析基础配置文件时发生致命错误: %w", err))
		}
	}

	// 3. 合并安全策略配置文件 (config/security_config.json)。
	viper.SetConfigName("security_config")
	viper.SetConfigType("json")
	viper.AddConfigPath("./config")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("未找到安全策略配置文件 (config/security_config.json)，将使用默认策略。")
		} else {
			panic(fmt.Errorf("合并安全策略配置文件时发生致命错误: %w", err))
		}
	}
}

// LoadSecurity decodes the "security" section. Defaults are registered with
// viper so an explicitly configured zero survives decoding and an operator can
// disable a single signal with e.g. `"no_avatar": 0`. The default policy
// matches the original deployment: thresholds 50/75/100, cap 150, 10-minute
// cross-post window, 5-minute ban purge window.
func LoadSecurity() (*models.SecurityConfig, error) {
	setSecurityDefaults()

	// Full Unmarshal rather than UnmarshalKey: only the former merges the
	// default layer into nested sections.
	var root struct {
		Security models.SecurityConfig `mapstructure:"security"`
	}
	if err := viper.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to decode security config: %w", err)
	}
	cfg := &root.Security

	// Regex sources contain characters viper treats as key delimiters, so the
	// pattern table defaults in code instead of through SetDefault.
	if len(cfg.KeywordPatterns) == 0 {
		cfg.KeywordPatterns = defaultKeywordPatterns()
	}
	return cfg, nil
}

func setSecurityDefaults() {
	viper.SetDefault("security.default_enabled", true)
	viper.SetDefault("security.db_path", "data/sentinel.db")

	viper.SetDefault("security.thresholds.watchlist", 50)
	viper.SetDefault("security.thresholds.delete", 75)
	viper.SetDefault("security.thresholds.ban", 100)
	viper.SetDefault("security.thresholds.cap", 150)

	viper.SetDefault("security.weights.currency_symbol", 20)
	viper.SetDefault("security.weights.hoisting_char", 20)
	viper.SetDefault("security.weights.username_pattern", 15)
	viper.SetDefault("security.weights.no_avatar", 15)
	viper.SetDefault("security.weights.no_roles", 20)
	viper.SetDefault("security.weights.exploitable_role_only", 30)
	viper.SetDefault("security.weights.caps_spam", 30)
	viper.SetDefault("security.weights.gibberish", 25)
	viper.SetDefault("security.weights.keyword_cap", 100)
	viper.SetDefault("security.weights.cross_post", 60)
	viper.SetDefault("security.weights.bad_magic", 100)

	viper.SetDefault("security.crosspost_window_seconds", 600)
	viper.SetDefault("security.purge_window_seconds", 300)
	viper.SetDefault("security.max_tracked_authors", 4096)
	viper.SetDefault("security.veteran_account_days", 365)
}

// defaultKeywordPatterns is the wallet-scam vocabulary with per-keyword
// weights. Patterns are compiled case-insensitively by the text scorer.
func defaultKeywordPatterns() map[string]int {
	return map[string]int{
		`\bWALL?LET\b`:               50,
		`\b\d+\s*SOL\b`:              50,
		`\bDEAD\s+TOKENS?\b`:         50,
		`\bPAY\s+HIM\b`:              50,
		`\bPLENTY\s+TRANSACTIONS?\b`: 40,
		`\bEMPTY\s+WALL?LET\b`:       40,
		`\bCRYPTO\b`:                 20,
		`\bDM\s+ME\b`:                30,
		`\bBUY\b.*\bWALL?LET\b`:      40,
	}
}
