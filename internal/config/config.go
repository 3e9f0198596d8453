package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	defaultDataDir  = "qr_codes"
	defaultPadWidth = 2

	StorageFS = "fs"
	StorageS3 = "s3"
)

func defaultRequiredColumns() []string {
	return []string{"DV NUMBER", "FORM D"}
}

type Config struct {
	DBDSN           string   `json:"db_dsn"`
	BaseURL         string   `json:"base_url"`
	DataDir         string   `json:"data_dir"`
	RequiredColumns []string `json:"required_columns"`
	PadWidth        int      `json:"pad_width"`
	IndexEnabled    bool     `json:"index_enabled"`
	LegacyExport    string   `json:"legacy_export"`
	Storage         string   `json:"storage"`
	S3Endpoint      string   `json:"s3_endpoint"`
	S3AccessKey     string   `json:"s3_access_key"`
	S3SecretKey     string   `json:"s3_secret_key"`
	S3Bucket        string   `json:"s3_bucket"`
	S3Region        string   `json:"s3_region"`
	S3UseSSL        bool     `json:"s3_use_ssl"`
}

func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DBDSN == "" {
		return Config{}, fmt.Errorf("db_dsn is required")
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("base_url is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if len(cfg.RequiredColumns) == 0 {
		cfg.RequiredColumns = defaultRequiredColumns()
	}
	if cfg.PadWidth == 0 {
		cfg.PadWidth = defaultPadWidth
	}
	if cfg.PadWidth < 0 {
		return Config{}, fmt.Errorf("pad_width must not be negative")
	}

	if cfg.Storage == "" {
		cfg.Storage = StorageFS
	}
	switch cfg.Storage {
	case StorageFS:
	case StorageS3:
		if cfg.S3Endpoint == "" {
			return Config{}, fmt.Errorf("s3_endpoint is required for s3 storage")
		}
		if cfg.S3AccessKey == "" {
			return Config{}, fmt.Errorf("s3_access_key is required for s3 storage")
		}
		if cfg.S3SecretKey == "" {
			return Config{}, fmt.Errorf("s3_secret_key is required for s3 storage")
		}
		if cfg.S3Bucket == "" {
			return Config{}, fmt.Errorf("s3_bucket is required for s3 storage")
		}
	default:
		return Config{}, fmt.Errorf("storage must be %q or %q", StorageFS, StorageS3)
	}

	return cfg, nil
}
