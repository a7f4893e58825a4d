package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"path/filepath"
	"sensordigest/internal/structures"
	"strings"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)

	v.BindEnv("logger.level", "SD_LOG_LEVEL")
	v.BindEnv("workbook.path", "SD_WORKBOOK_PATH")
	v.BindEnv("sweep.interval", "SD_SWEEP_INTERVAL")
	v.BindEnv("mail.enabled", "SD_MAIL_ENABLED")
	v.BindEnv("mail.host", "SD_MAIL_HOST")
	v.BindEnv("mail.username", "SD_MAIL_USERNAME")
	v.BindEnv("mail.password", "SD_MAIL_PASSWORD")
	v.BindEnv("cache.enabled", "SD_CACHE_ENABLED")
	v.BindEnv("cache.size", "SD_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "SensorDigest"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workbook.summarySheet", "Summary")

	v.SetDefault("summary.firstColumn", 2)
	v.SetDefault("summary.columnScanLimit", 30)
	v.SetDefault("summary.timeLayout", "2006-01-02 15:04:05")

	v.SetDefault("alerts.violationSubject", "Humidity sensor %s Alarm")
	v.SetDefault("alerts.staleSubject", "Humidity sensor not reporting")

	v.SetDefault("digest.subject", "Humidity sensor weekly summary")
	v.SetDefault("digest.banner", "<b>Weekly humidity sensor summary email</b><br>")

	v.SetDefault("sweep.interval", "24h")

	v.SetDefault("archive.maxRows", 5000)
	v.SetDefault("archive.dir", "./archive")

	v.SetDefault("mail.port", 587)

	v.SetDefault("cache.ttl", "5m")
}
