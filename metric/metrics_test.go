package metric

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/crosswalk/graph"
	"github.com/c360studio/crosswalk/vocabulary/codemeta"
)

func TestMetricsObserveInserter(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	g := graph.New()
	in := graph.NewInserter(g, codemeta.NewVocabulary(),
		graph.WithObserver(m),
		graph.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	frog := graph.IRI("https://example.org/frog")

	require.NoError(t, in.Insert(frog, codemeta.Name, "frog"))
	require.NoError(t, in.Insert(frog, codemeta.Keywords, "pond, amphibian"))
	assert.Error(t, in.Insert(frog, "colour", "green"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.inserted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected))
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordMerge(graph.MergeStats{Merged: 4, Superseded: 1, Remapped: 2})
	m.RecordSkolemize(3)
	m.RecordFrame(2 * time.Millisecond)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.merged.WithLabelValues("merged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.merged.WithLabelValues("superseded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.merged.WithLabelValues("remapped")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.skolemized))
	assert.Equal(t, 1, testutil.CollectAndCount(m.frameDuration))

	count, err := testutil.GatherAndCount(reg,
		"crosswalk_merge_triples_total", "crosswalk_skolemized_nodes_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestNilMetricsAreSafe(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.NotPanics(t, func() {
		m.ObserveInsert("name", 1)
		m.ObserveReject("colour")
		m.RecordMerge(graph.MergeStats{Merged: 1})
		m.RecordSkolemize(1)
		m.RecordFrame(time.Second)
	})
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
