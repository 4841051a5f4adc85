// Package config loads server configuration from a YAML file with
// environment variable overrides for secrets. A .env file in the working
// directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Provider struct {
		// Chat selects the conversational backend: "gemini" or "anthropic".
		Chat string `yaml:"chat"`
		// Images selects the image backend: "gemini" or "openai".
		Images       string `yaml:"images"`
		GeminiAPIKey string `yaml:"gemini_api_key"`
		ClaudeAPIKey string `yaml:"claude_api_key"`
		OpenAIAPIKey string `yaml:"openai_api_key"`
	} `yaml:"provider"`
	VoiceWorker struct {
		Addr string `yaml:"addr"`
	} `yaml:"voice_worker"`
	MinIO struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`
	Fanout struct {
		Workers int `yaml:"workers"`
	} `yaml:"fanout"`
	Loop struct {
		MaxIterations int `yaml:"max_iterations"`
	} `yaml:"loop"`
	FFmpeg struct {
		Binary string `yaml:"binary"`
	} `yaml:"ffmpeg"`
}

// Load reads the YAML file at path and applies environment overrides. A
// missing file is not an error; defaults plus environment still produce a
// usable config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Provider.Chat = "gemini"
	cfg.Provider.Images = "gemini"

	if path != "" {
		f, err := os.Open(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer f.Close()
			if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "REELFORGE_ADDR")
	setString(&cfg.Log.Level, "REELFORGE_LOG_LEVEL")
	setString(&cfg.Log.Format, "REELFORGE_LOG_FORMAT")
	setString(&cfg.Provider.Chat, "REELFORGE_CHAT_PROVIDER")
	setString(&cfg.Provider.Images, "REELFORGE_IMAGE_PROVIDER")
	setString(&cfg.Provider.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.Provider.ClaudeAPIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Provider.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.VoiceWorker.Addr, "REELFORGE_VOICE_WORKER_ADDR")
	setString(&cfg.MinIO.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.MinIO.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.MinIO.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.MinIO.Bucket, "MINIO_BUCKET")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MinIO.UseSSL = b
		}
	}
	if v := os.Getenv("REELFORGE_FANOUT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Fanout.Workers = n
		}
	}
	if v := os.Getenv("REELFORGE_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Loop.MaxIterations = n
		}
	}
	setString(&cfg.FFmpeg.Binary, "REELFORGE_FFMPEG_BINARY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
