// Package config loads AutoCut's YAML configuration with environment
// variable expansion, following the teacher's LoadFromBytes/applyDefaults
// shape.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration, loaded from YAML with
// environment variable overrides for the server-level settings.
type Config struct {
	Host string `yaml:"Host"`
	Port int    `yaml:"Port"`

	OutputRoot            string `yaml:"OutputRoot"`
	UploadRoot            string `yaml:"UploadRoot"`
	MaxUploadBytes        int64  `yaml:"MaxUploadBytes"`
	MaxConcurrentAnalyses int    `yaml:"MaxConcurrentAnalyses"`
	DecoderBinary         string `yaml:"DecoderBinary"`
	ProbeBinary           string `yaml:"ProbeBinary"`
	TranscriptionModelDir string `yaml:"TranscriptionModelDir"`
	TranscriptionHTTPURL  string `yaml:"TranscriptionHTTPURL"`

	Database struct {
		SQLitePath string `yaml:"SQLitePath"`
	} `yaml:"Database"`

	Retention struct {
		JobTTLHours int `yaml:"JobTTLHours"`
	} `yaml:"Retention"`
}

// LoadFromBytes parses YAML bytes with environment variable expansion
// (`os.ExpandEnv`) and applies defaults for anything left unset.
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &c); err != nil {
		return c, err
	}
	applyDefaults(&c)
	return c, nil
}

// LoadFromFile reads and parses path, or returns defaults if path does not
// exist (AutoCut runs fine with only environment variables set).
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var c Config
			applyDefaults(&c)
			return c, nil
		}
		return Config{}, err
	}
	return LoadFromBytes(data)
}

func applyDefaults(c *Config) {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.OutputRoot == "" {
		c.OutputRoot = envOr("OUTPUT_ROOT", "./data/output")
	}
	if c.UploadRoot == "" {
		c.UploadRoot = envOr("UPLOAD_ROOT", "./data/uploads")
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = envInt64Or("MAX_UPLOAD_BYTES", 2<<30) // 2 GiB
	}
	if c.MaxConcurrentAnalyses == 0 {
		c.MaxConcurrentAnalyses = envIntOr("MAX_CONCURRENT_ANALYSES", 2)
	}
	if c.DecoderBinary == "" {
		c.DecoderBinary = envOr("DECODER_BINARY", "ffmpeg")
	}
	if c.ProbeBinary == "" {
		c.ProbeBinary = envOr("PROBE_BINARY", "ffprobe")
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = envOr("DATABASE_PATH", "./data/autocut.db")
	}
	if c.Retention.JobTTLHours == 0 {
		c.Retention.JobTTLHours = 72
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return out
}

func envInt64Or(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return out
}
