package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithOptions(Options{ConfigPaths: []string{t.TempDir()}, SkipEnvFile: true, Environment: "test"})
	require.NoError(t, err)

	assert.Equal(t, "report-workers", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Metrics.Address)

	wcfg := GetWorkerConfig(cfg, FillReportTaskType)
	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 30000, wcfg.Timeout)
}

func TestLoad_FileEnvironmentAndOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
report:
  template_path: /srv/templates/report.docx
  output_dir: /srv/reports
  timezone: UTC
workers:
  fill-report-template:
    max_jobs_active: 2
logging:
  level: info
`)
	writeConfig(t, dir, "config.staging.yaml", `
logging:
  format: json
`)
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := LoadWithOptions(Options{ConfigPaths: []string{dir}, SkipEnvFile: true, Environment: "staging"})
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "/srv/templates/report.docx", cfg.Report.TemplatePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	wcfg := GetWorkerConfig(cfg, FillReportTaskType)
	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 2, wcfg.MaxJobsActive)

	loc, err := cfg.Report.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidTimezone(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "report:\n  timezone: Not/AZone\n")

	_, err := LoadWithOptions(Options{ConfigPaths: []string{dir}, SkipEnvFile: true})
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "logging: [unterminated\n")

	_, err := LoadWithOptions(Options{ConfigPaths: []string{dir}, SkipEnvFile: true})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing broker", Config{Report: ReportConfig{OutputDir: "/out"}}, "camunda.broker_address"},
		{"missing output dir", Config{Camunda: CamundaConfig{BrokerAddress: "zeebe:26500"}}, "report.output_dir"},
		{
			name: "bad timezone",
			cfg: Config{
				Camunda: CamundaConfig{BrokerAddress: "zeebe:26500"},
				Report:  ReportConfig{OutputDir: "/out", Timezone: "Mars/Olympus"},
			},
			wantErr: "report.timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Zero(t, GetDuration(0))
}
