package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordStrategyAttempt(t *testing.T) {
	before := testutil.ToFloat64(StrategyAttempts.WithLabelValues("rapidapi", "top_comments", "empty"))
	RecordStrategyAttempt("rapidapi", "top_comments", "empty")
	after := testutil.ToFloat64(StrategyAttempts.WithLabelValues("rapidapi", "top_comments", "empty"))
	assert.Equal(t, before+1, after)
}

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(RunsTotal.WithLabelValues("ok"))
	RecordRun("ok", 1.5)
	assert.Equal(t, before+1, testutil.ToFloat64(RunsTotal.WithLabelValues("ok")))
}

func TestRecordSummary(t *testing.T) {
	before := testutil.ToFloat64(SummariesTotal.WithLabelValues("heuristic"))
	RecordSummary("heuristic")
	assert.Equal(t, before+1, testutil.ToFloat64(SummariesTotal.WithLabelValues("heuristic")))
}
