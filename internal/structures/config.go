package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type WorkbookConfig struct {
	Path         string `yaml:"path" validate:"required|unixPath"`
	SummarySheet string `yaml:"summarySheet"`
}

type SummaryConfig struct {
	FirstColumn     int    `yaml:"firstColumn"`
	ColumnScanLimit int    `yaml:"columnScanLimit"`
	TimeLayout      string `yaml:"timeLayout"`
}

type AlertsConfig struct {
	ViolationSubject string `yaml:"violationSubject"`
	StaleSubject     string `yaml:"staleSubject"`
}

type DigestConfig struct {
	Subject string `yaml:"subject"`
	Banner  string `yaml:"banner"`
}

type SweepConfig struct {
	Interval time.Duration `yaml:"interval" validate:"required|min:1"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	MaxRows int    `yaml:"maxRows"`
	Dir     string `yaml:"dir"`
}

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type ChartConfig struct {
	Title   string   `yaml:"title"`
	Sensors []string `yaml:"sensors"`
	Metric  string   `yaml:"metric"`
	Points  int      `yaml:"points"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server         `yaml:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Workbook  WorkbookConfig `yaml:"workbook"`
	Summary   SummaryConfig  `yaml:"summary"`
	Alerts    AlertsConfig   `yaml:"alerts"`
	Digest    DigestConfig   `yaml:"digest"`
	Sweep     SweepConfig    `yaml:"sweep"`
	Archive   ArchiveConfig  `yaml:"archive"`
	Mail      MailConfig     `yaml:"mail"`
	Charts    []ChartConfig  `yaml:"charts"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}
