package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"report-workers/internal/common/logger"
)

func TestObservability_SpansAndMetrics(t *testing.T) {
	reg := promclient.NewRegistry()
	recorder := tracetest.NewSpanRecorder()

	obs := New("report-workers-test",
		WithRegisterer(reg),
		WithSpanProcessor(recorder),
		WithLogger(logger.NewTestLogger(t)),
	)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	ctx, span := obs.StartSpan(context.Background(), "fill-report", attribute.String("template", "t.docx"))
	obs.RecordJobProcessed(ctx, "success")
	obs.RecordJobDuration(ctx, 25*time.Millisecond, "success")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "fill-report", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("template", "t.docx"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "jobs_processed")
	assert.Contains(t, joined, "jobs_duration")
}

func TestObservability_NilIsSafe(t *testing.T) {
	var obs *Observability

	ctx, span := obs.StartSpan(context.Background(), "noop")
	obs.RecordJobProcessed(ctx, "failed")
	obs.RecordJobDuration(ctx, time.Second, "failed")
	span.End()

	assert.False(t, span.SpanContext().IsValid())
}
