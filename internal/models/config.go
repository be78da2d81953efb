package models

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CatalogDish is one row of the seed catalogue used by the factories.
type CatalogDish struct {
	Name         string   `mapstructure:"name"`
	BaseCategory string   `mapstructure:"base_category"`
	UnitType     UnitType `mapstructure:"unit_type"`
	UnitAmount   float64  `mapstructure:"unit_amount"`
	IsMenu       bool     `mapstructure:"is_menu"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type IntelligenceConfig struct {
	ExpensiveThreshold float64 `mapstructure:"expensive_threshold"`
	MaxCandidates      int     `mapstructure:"max_candidates"`
}

type AccountingConfig struct {
	CommissionRate  float64 `mapstructure:"commission_rate"`
	GracePeriodDays int     `mapstructure:"grace_period_days"`
}

type Config struct {
	// "postgres" or "memory"
	Store           string        `mapstructure:"store"`
	DatabaseURL     string        `mapstructure:"database_url"`
	InvoiceDSN      string        `mapstructure:"invoice_dsn"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	// zero keeps snapshots until replaced
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	KafkaEnabled    bool          `mapstructure:"kafka_enabled"`
	KafkaBrokerList string        `mapstructure:"kafka_broker_list"`
	// "console" or "json"; ignored when kafka is enabled
	OutputFormat string `mapstructure:"output_format"`
	OutputFolder string `mapstructure:"output_folder"`
	OutputPath   string `mapstructure:"output_path"`
	// "local" or "cloud"
	OutputDestination string             `mapstructure:"output_destination"`
	CloudStorage      CloudStorageConfig `mapstructure:"cloud_storage"`
	Timezone          string             `mapstructure:"timezone"`
	Seed              int64              `mapstructure:"seed"`
	Intelligence      IntelligenceConfig `mapstructure:"intelligence"`
	Accounting        AccountingConfig   `mapstructure:"accounting"`
	Catalog           []CatalogDish      `mapstructure:"catalog"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", "postgres")
	v.SetDefault("database_url", "postgres://localhost:5432/foodmarket")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", "0s")
	v.SetDefault("kafka_broker_list", "localhost:9092")
	v.SetDefault("output_format", "console")
	v.SetDefault("output_destination", "local")
	v.SetDefault("output_path", ".")
	v.SetDefault("output_folder", "exports")
	v.SetDefault("timezone", "Local")
	v.SetDefault("seed", 42)
	v.SetDefault("intelligence.expensive_threshold", 1.15)
	v.SetDefault("intelligence.max_candidates", 5000)
	v.SetDefault("accounting.commission_rate", 0.05)
	v.SetDefault("accounting.grace_period_days", 5)
}

// LoadConfig initializes and reads the configuration using Viper. A missing
// config file is not an error when no explicit path was given. Flags that
// were set on the command line override the file and the environment; a flag
// named kafka-broker-list binds to the key kafka_broker_list.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var bindErr error
	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
	}
	if bindErr != nil {
		return nil, fmt.Errorf("bind flags: %w", bindErr)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("examples")
		v.SetConfigName("foodmarket")
	}

	v.SetEnvPrefix("FOODMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (cfg *Config) Validate() error {
	if cfg.Accounting.CommissionRate < 0 || cfg.Accounting.CommissionRate >= 1 {
		return fmt.Errorf("accounting.commission_rate must be in [0, 1), got %v", cfg.Accounting.CommissionRate)
	}
	if cfg.Accounting.GracePeriodDays < 0 {
		return fmt.Errorf("accounting.grace_period_days must not be negative, got %d", cfg.Accounting.GracePeriodDays)
	}
	if cfg.Intelligence.ExpensiveThreshold < 1 {
		return fmt.Errorf("intelligence.expensive_threshold must be >= 1, got %v", cfg.Intelligence.ExpensiveThreshold)
	}
	switch cfg.Store {
	case "", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store %q", cfg.Store)
	}
	switch cfg.OutputFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported output format %q", cfg.OutputFormat)
	}
	switch cfg.OutputDestination {
	case "", "local":
	case "cloud":
		if cfg.CloudStorage.Provider != "s3" {
			return fmt.Errorf("unsupported cloud storage provider: %q", cfg.CloudStorage.Provider)
		}
		if cfg.CloudStorage.BucketName == "" {
			return fmt.Errorf("cloud_storage.bucket_name is required for cloud output")
		}
	default:
		return fmt.Errorf("unsupported output destination %q", cfg.OutputDestination)
	}
	for _, dish := range cfg.Catalog {
		if !dish.UnitType.Valid() {
			return fmt.Errorf("catalog dish %q: unknown unit type %q", dish.Name, dish.UnitType)
		}
	}
	return nil
}

// Location resolves the configured timezone used for week bucketing.
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" || cfg.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// LoadCatalog appends dishes from a CSV file with the header
// name,base_category,unit_type,unit_amount,is_menu.
func (cfg *Config) LoadCatalog(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	return cfg.readCatalog(file)
}

func (cfg *Config) readCatalog(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(fields) < 1 || strings.TrimSpace(fields[0]) == "" {
			continue
		}
		dish := CatalogDish{Name: strings.TrimSpace(fields[0])}
		if len(fields) > 1 {
			dish.BaseCategory = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			dish.UnitType = UnitType(strings.TrimSpace(fields[2]))
			if !dish.UnitType.Valid() {
				return fmt.Errorf("catalog dish %q: unknown unit type %q", dish.Name, fields[2])
			}
		}
		if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
			amount, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
			if err != nil {
				return fmt.Errorf("catalog dish %q: unit amount: %w", dish.Name, err)
			}
			dish.UnitAmount = amount
		}
		if len(fields) > 4 {
			dish.IsMenu, _ = strconv.ParseBool(strings.TrimSpace(fields[4]))
		}
		cfg.Catalog = append(cfg.Catalog, dish)
	}

	return nil
}
