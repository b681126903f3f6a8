package sample_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-planning-report/internal/models"
	"route-planning-report/internal/parser"
	"route-planning-report/internal/report"
	"route-planning-report/internal/sample"
)

func TestGenerateShape(t *testing.T) {
	rows := sample.Generate(rand.New(rand.NewSource(1)), "Geel", sample.Options{Routes: 5, MaxStops: 4})

	byRoute := map[float64][]sample.Row{}
	for _, r := range rows {
		byRoute[r.RouteID] = append(byRoute[r.RouteID], r)
	}
	require.Len(t, byRoute, 5)
	for id, route := range byRoute {
		assert.Equal(t, "DEPOT", route[0].LocationFunction, "route %v starts at depot", id)
		assert.Equal(t, "DEPOT", route[len(route)-1].LocationFunction, "route %v ends at depot", id)
		assert.LessOrEqual(t, len(route), 6)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := sample.Generate(rand.New(rand.NewSource(42)), "Jumet", sample.Options{Routes: 3})
	b := sample.Generate(rand.New(rand.NewSource(42)), "Jumet", sample.Options{Routes: 3})
	assert.Equal(t, a, b)
}

func TestSampleFeedsReport(t *testing.T) {
	rows := sample.Generate(rand.New(rand.NewSource(7)), "Triton", sample.Options{Routes: 4})
	path := filepath.Join(t.TempDir(), "Planning_Triton.csv")
	require.NoError(t, sample.WriteCSV(path, rows))

	records, err := parser.NewParser("").ParseFile("Triton", path)
	require.NoError(t, err)
	require.Len(t, records, len(rows))

	res, err := report.Build([]models.SourceBatch{{Name: "Triton", Records: records}}, report.Options{})
	require.NoError(t, err)
	require.Len(t, res.Summaries, 4)
	require.Empty(t, res.Warnings, "vehicle attributes are constant per route")

	for _, s := range res.Summaries {
		assert.Equal(t, "Triton", s.Location)
		assert.GreaterOrEqual(t, s.Stops, 1)
		assert.Greater(t, s.Cost, 0.0)
	}
}
