package fillreporttemplate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"report-workers/internal/common/errors"
	"report-workers/internal/common/logger"
	"report-workers/internal/common/metrics"
	"report-workers/internal/common/observability"
	"report-workers/internal/report"
)

const TaskType = "fill-report-template"

type Handler struct {
	config       *Config
	filler       *report.Filler
	logger       logger.Logger
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	now          func() time.Time
	newID        func() uuid.UUID
}

type HandlerOptions struct {
	Config        *Config
	Filler        *report.Filler
	Logger        logger.Logger
	Observability *observability.Observability
	// Clock and NewID default to time.Now and uuid.New.
	Clock func() time.Time
	NewID func() uuid.UUID
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("invalid configuration for %s: config is required", TaskType)
	}
	if opts.Filler == nil {
		return nil, fmt.Errorf("invalid configuration for %s: filler is required", TaskType)
	}

	cfg := *opts.Config
	cfg.applyDefaults()

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	h := &Handler{
		config:       &cfg,
		filler:       opts.Filler,
		logger:       log,
		obs:          opts.Observability,
		errorHandler: errors.NewErrorHandler(log),
		now:          opts.Clock,
		newID:        opts.NewID,
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.newID == nil {
		h.newID = uuid.New
	}
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.Int64("job.key", job.GetKey()),
		attribute.Int64("process.instance.key", job.GetProcessInstanceKey()),
	)
	defer span.End()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		h.failJob(ctx, client, job, span, errors.NewInputParseError(err), startTime)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, span, err, startTime)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, "success")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "success")
}

// Execute fills one report. Unreadable input yields INPUT_PARSE_FAILED. A
// record that cannot be written, or any fill failure, yields
// REPORT_GENERATION_FAILED.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := parseReportData(input.ReportData)
	if err != nil {
		metrics.ReportFills.WithLabelValues(outcomeOf(err)).Inc()
		return nil, err
	}

	templatePath := h.config.TemplatePath
	if input.TemplatePath != "" {
		if templatePath, err = resolveWithin(h.config.TemplateDir, input.TemplatePath); err != nil {
			metrics.ReportFills.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
			return nil, errors.NewInputParseError(fmt.Errorf("templatePath: %w", err))
		}
	}
	if templatePath == "" {
		metrics.ReportFills.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		return nil, errors.NewInputParseError(fmt.Errorf("templatePath is required"))
	}

	id := h.newID()
	outputPath := filepath.Join(h.config.OutputDir, FileName(rec, h.now().In(h.config.Location), id))
	if input.OutputPath != "" {
		if outputPath, err = resolveWithin(h.config.OutputDir, input.OutputPath); err != nil {
			metrics.ReportFills.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
			return nil, errors.NewInputParseError(fmt.Errorf("outputPath: %w", err))
		}
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("report.id", id.String()),
		attribute.String("report.template", templatePath),
		attribute.String("report.output", outputPath),
	)

	start := time.Now()
	err = h.filler.Fill(templatePath, rec, outputPath)
	metrics.ReportFillDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ReportFills.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}
	metrics.ReportFills.WithLabelValues(metrics.OutcomeSuccess).Inc()

	h.logger.Info("report generated", map[string]interface{}{
		"reportId":   id.String(),
		"outputPath": outputPath,
	})

	return &Output{
		ReportID:   id.String(),
		Success:    true,
		OutputPath: outputPath,
	}, nil
}

// parseReportData accepts the record as a JSON object or as a string
// containing one.
func parseReportData(raw json.RawMessage) (report.Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.NewInputParseError(fmt.Errorf("reportData is required"))
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.NewInputParseError(err)
		}
		raw = []byte(s)
	}
	return report.ParseRecord(raw)
}

func outcomeOf(err error) string {
	if errors.HasCode(err, errors.ErrCodeInputParseFailed) {
		return metrics.OutcomeInvalidInput
	}
	return metrics.OutcomeFailed
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, span trace.Span, err error, startTime time.Time) {
	stdErr := errors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(startTime), "failed")

	span.RecordError(stdErr)
	span.SetStatus(codes.Error, stdErr.Message)

	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
