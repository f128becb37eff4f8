package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordScore(t *testing.T) {
	before := testutil.ToFloat64(ScoresTotal.WithLabelValues("test", "ok"))
	RecordScore("test", 83)
	RecordScoreError("test")

	assert.Equal(t, before+1, testutil.ToFloat64(ScoresTotal.WithLabelValues("test", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ScoresTotal.WithLabelValues("test", "error")))
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("miss"))

	RecordCache(true)
	RecordCache(false)
	RecordCache(false)

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("miss")))
}

func TestRecordBatch(t *testing.T) {
	before := testutil.ToFloat64(BatchArticles.WithLabelValues("rescore", "updated"))
	RecordBatch("rescore", "updated")
	assert.Equal(t, before+1, testutil.ToFloat64(BatchArticles.WithLabelValues("rescore", "updated")))
}
