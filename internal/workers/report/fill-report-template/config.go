package fillreporttemplate

import (
	"fmt"
	"path/filepath"
	"time"

	"report-workers/internal/common/config"
)

type Config struct {
	TemplatePath string
	// TemplateDir and OutputDir bound the paths a job may name explicitly.
	TemplateDir string
	OutputDir   string
	Location     *time.Location
	Timeout      time.Duration
}

// ConfigFromApp derives the worker settings from the report and worker
// sections of the application config.
func ConfigFromApp(cfg *config.Config) (*Config, error) {
	loc, err := cfg.Report.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		TemplatePath: cfg.Report.TemplatePath,
		TemplateDir:  cfg.Report.TemplateDir,
		OutputDir:    cfg.Report.OutputDir,
		Location:     loc,
		Timeout:      config.GetDuration(wcfg.Timeout),
	}, nil
}

func (c *Config) applyDefaults() {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.TemplateDir == "" && c.TemplatePath != "" {
		c.TemplateDir = filepath.Dir(c.TemplatePath)
	}
}
