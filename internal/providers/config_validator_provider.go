package providers

import (
	"fmt"
	"github.com/gookit/validate"
	"sensordigest/internal/structures"
)

var chartMetrics = map[string]bool{"": true, "temperature": true, "humidity": true}

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	if c.conf.Mail.Enabled {
		if c.conf.Mail.Host == "" || c.conf.Mail.From == "" {
			return fmt.Errorf("mail.host and mail.from are required when mail is enabled")
		}
	}
	if c.conf.Archive.Enabled && c.conf.Archive.MaxRows < 1 {
		return fmt.Errorf("archive.maxRows must be positive when archive is enabled")
	}
	for i, chart := range c.conf.Charts {
		if chart.Title == "" {
			return fmt.Errorf("charts[%d]: title is required", i)
		}
		if !chartMetrics[chart.Metric] {
			return fmt.Errorf("charts[%d]: unknown metric %q", i, chart.Metric)
		}
	}
	return nil
}
