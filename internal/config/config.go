package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting for the service. It is built once at
// startup and passed by reference; no component reads process environment
// directly.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Analysis AnalysisConfig
	Scoring  ScoringConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	CORSOrigins  string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
}

// AnalysisConfig describes the external anxiety-analysis service and the
// polling budget for its asynchronous jobs.
type AnalysisConfig struct {
	BaseURL       string
	SubmitTimeout time.Duration
	PollInterval  time.Duration
	PollTimeout   time.Duration
}

// StarCuts are the two anxiety cut points dividing [0,100] into 3/2/1 star
// bands for one tier: anxiety <= ThreeStarMax scores 3 stars, <= TwoStarMax
// scores 2, anything above scores 1.
type StarCuts struct {
	ThreeStarMax float64
	TwoStarMax   float64
}

// ScoringConfig carries the tunable scoring thresholds. Defaults mirror the
// values the product shipped with; they are configuration, not contract.
type ScoringConfig struct {
	Timezone            string
	BandLowMax          float64
	BandHighMin         float64
	LowAnxietyJumpBelow float64
	Easy                StarCuts
	Medium              StarCuts
	Hard                StarCuts
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults() {
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("server.read_timeout", "20s")
	viper.SetDefault("server.write_timeout", "20s")
	viper.SetDefault("server.body_limit", 10*1024*1024)
	viper.SetDefault("server.cors_origins", "*")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("jwt.access_token_ttl", "168h")

	viper.SetDefault("analysis.base_url", "http://localhost:8080")
	viper.SetDefault("analysis.submit_timeout", "30s")
	viper.SetDefault("analysis.poll_interval", "2s")
	viper.SetDefault("analysis.poll_timeout", "10m")

	viper.SetDefault("scoring.timezone", "America/Lima")
	viper.SetDefault("scoring.band_low_max", 33.3)
	viper.SetDefault("scoring.band_high_min", 66.6)
	viper.SetDefault("scoring.low_anxiety_jump_below", 33.0)
	viper.SetDefault("scoring.easy.three_star_max", 77.7)
	viper.SetDefault("scoring.easy.two_star_max", 83.3)
	viper.SetDefault("scoring.medium.three_star_max", 44.4)
	viper.SetDefault("scoring.medium.two_star_max", 55.5)
	viper.SetDefault("scoring.hard.three_star_max", 11.1)
	viper.SetDefault("scoring.hard.two_star_max", 22.2)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
}

// LoadConfig reads config.yaml plus environment overrides into a Config.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults plus environment variables are a valid configuration;
		// only a malformed file is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			BodyLimit:    viper.GetInt("server.body_limit"),
			CORSOrigins:  viper.GetString("server.cors_origins"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetInt("db.port"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			DBName:   viper.GetString("db.name"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:      viper.GetString("jwt.secret_key"),
			AccessTokenTTL: viper.GetDuration("jwt.access_token_ttl"),
		},
		Analysis: AnalysisConfig{
			BaseURL:       viper.GetString("analysis.base_url"),
			SubmitTimeout: viper.GetDuration("analysis.submit_timeout"),
			PollInterval:  viper.GetDuration("analysis.poll_interval"),
			PollTimeout:   viper.GetDuration("analysis.poll_timeout"),
		},
		Scoring: ScoringConfig{
			Timezone:            viper.GetString("scoring.timezone"),
			BandLowMax:          viper.GetFloat64("scoring.band_low_max"),
			BandHighMin:         viper.GetFloat64("scoring.band_high_min"),
			LowAnxietyJumpBelow: viper.GetFloat64("scoring.low_anxiety_jump_below"),
			Easy: StarCuts{
				ThreeStarMax: viper.GetFloat64("scoring.easy.three_star_max"),
				TwoStarMax:   viper.GetFloat64("scoring.easy.two_star_max"),
			},
			Medium: StarCuts{
				ThreeStarMax: viper.GetFloat64("scoring.medium.three_star_max"),
				TwoStarMax:   viper.GetFloat64("scoring.medium.two_star_max"),
			},
			Hard: StarCuts{
				ThreeStarMax: viper.GetFloat64("scoring.hard.three_star_max"),
				TwoStarMax:   viper.GetFloat64("scoring.hard.two_star_max"),
			},
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	// Environment variables win over file values for deploy-sensitive keys.
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		config.Redis.Address = addr
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if base := os.Getenv("MODEL_API_URL"); base != "" {
		config.Analysis.BaseURL = base
	}

	if config.JWT.SecretKey == "" {
		return nil, fmt.Errorf("jwt.secret_key is not configured")
	}

	return config, nil
}

// GetDSN returns the Postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}
