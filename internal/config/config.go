package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultConfigRelPath = ".flightdesk/config.yaml"

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type CatalogConfig struct {
	File string `yaml:"file"`
}

type BookingConfig struct {
	Prefix      string `yaml:"prefix"`
	StartNumber int    `yaml:"start_number"`
	SeatRows    int    `yaml:"seat_rows"`
	SeatLetters string `yaml:"seat_letters"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Catalog CatalogConfig `yaml:"catalog"`
	Booking BookingConfig `yaml:"booking"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// Load loads YAML config, then applies env overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configPath = filepath.Join(home, defaultConfigRelPath)
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "./flightdesk.db"
	}
	if c.Booking.Prefix == "" {
		c.Booking.Prefix = "FL"
	}
	if c.Booking.StartNumber == 0 {
		c.Booking.StartNumber = 1000
	}
	if c.Booking.SeatRows == 0 {
		c.Booking.SeatRows = 30
	}
	if c.Booking.SeatLetters == "" {
		c.Booking.SeatLetters = "ABCDEF"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path cannot be empty")
	}
	if strings.TrimSpace(c.Booking.Prefix) == "" {
		return errors.New("booking.prefix cannot be empty")
	}
	if c.Booking.StartNumber < 0 {
		return errors.New("booking.start_number cannot be negative")
	}
	if c.Booking.SeatRows < 1 {
		return errors.New("booking.seat_rows must be at least 1")
	}
	if len(c.Booking.SeatLetters) == 0 {
		return errors.New("booking.seat_letters cannot be empty")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir cannot be empty")
	}

	if err := ensureWritableDir(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir not writable: %w", err)
	}
	return nil
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func applyEnvOverrides(c *Config) {
	setString(&c.Server.Host, "FLIGHTDESK_SERVER_HOST")
	setInt(&c.Server.Port, "FLIGHTDESK_SERVER_PORT")
	setString(&c.Storage.Path, "FLIGHTDESK_STORAGE_PATH")
	setString(&c.Catalog.File, "FLIGHTDESK_CATALOG_FILE")
	setString(&c.Booking.Prefix, "FLIGHTDESK_BOOKING_PREFIX")
	setInt(&c.Booking.StartNumber, "FLIGHTDESK_BOOKING_START_NUMBER")
	setString(&c.Output.Dir, "FLIGHTDESK_OUTPUT_DIR")
	setString(&c.Log.Level, "FLIGHTDESK_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
