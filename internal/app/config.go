package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
	"github.com/grokmeetu/meetu-backend/internal/utils"
)

type Config struct {
	Port         string           `yaml:"port"`
	AdminPort    string           `yaml:"admin_port"`
	ModelDir     string           `yaml:"model_dir"`
	JWTSecretKey string           `yaml:"jwt_secret_key"`
	AllowOrigins []string         `yaml:"allow_origins"`
	Thresholds   types.Thresholds `yaml:"thresholds"`
	SeedDemoData bool             `yaml:"seed_demo_data"`
}

// LoadConfig reads the optional YAML file named by CONFIG_FILE, then lets
// environment variables override it.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:       "8080",
		AdminPort:  "8081",
		ModelDir:   "models",
		Thresholds: types.DefaultThresholds(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.AdminPort = utils.GetEnv("ADMIN_PORT", cfg.AdminPort, log)
	cfg.ModelDir = utils.GetEnv("MODEL_DIR", cfg.ModelDir, log)
	cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	cfg.SeedDemoData = utils.GetEnvAsBool("SEED_DEMO_DATA", cfg.SeedDemoData, log)
	cfg.Thresholds.Motivation = utils.GetEnvAsFloat("THRESHOLD_MOTIVATION", cfg.Thresholds.Motivation, log)
	cfg.Thresholds.Pressure = utils.GetEnvAsFloat("THRESHOLD_PRESSURE", cfg.Thresholds.Pressure, log)
	if level := os.Getenv("THRESHOLD_CREDIT_LEVEL"); level != "" {
		cfg.Thresholds.CreditLevel = types.CreditLevel(level)
	}
	return cfg, nil
}
