package providers

import (
	"sensordigest/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Workbook: structures.WorkbookConfig{
			Path:         "/tmp/sensors.xlsx",
			SummarySheet: "Summary",
		},
		Sweep: structures.SweepConfig{
			Interval: 24 * time.Hour,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingWorkbookPath(t *testing.T) {
	c := validConfig()
	c.Workbook.Path = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MailEnabledWithoutHost(t *testing.T) {
	c := validConfig()
	c.Mail.Enabled = true
	c.Mail.From = "sensors@example.com"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ChartWithoutTitle(t *testing.T) {
	c := validConfig()
	c.Charts = []structures.ChartConfig{{Metric: "humidity"}}
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ChartUnknownMetric(t *testing.T) {
	c := validConfig()
	c.Charts = []structures.ChartConfig{{Title: "All sensors", Metric: "pressure"}}
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ArchiveWithoutLimit(t *testing.T) {
	c := validConfig()
	c.Archive.Enabled = true
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
