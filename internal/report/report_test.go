package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"route-planning-report/internal/models"
	"route-planning-report/internal/report"
)

// BuildSuite runs the whole merge, aggregate and format pipeline.
type BuildSuite struct {
	suite.Suite
	batches []models.SourceBatch
}

func (s *BuildSuite) SetupTest() {
	route := func() []models.StopRecord {
		return []models.StopRecord{
			stop(7.0, "A", "DEPOT1", "DEPOT", 12.4, 0.95, hm(6, 0), hm(6, 30)),
			stop(7.0, "A", "Brussels", "DELIVERY", 20.3, 0.6, hm(7, 15), hm(7, 45)),
			stop(7.0, "A", "Leuven", "DELIVERY", 7.9, 0.2, hm(8, 30), hm(9, 0)),
		}
	}
	s.batches = []models.SourceBatch{
		{Name: "Jumet", Records: route()},
		{Name: "Geel", Records: route()},
	}
}

func (s *BuildSuite) TestEndToEnd() {
	res, err := report.Build(s.batches, report.Options{})
	require.NoError(s.T(), err)

	require.Equal(s.T(), []string{"Jumet", "Geel"}, res.Sources)
	require.Equal(s.T(), 6, res.RecordCount)
	require.Len(s.T(), res.Summaries, 2)
	require.Empty(s.T(), res.Warnings)

	for _, sum := range res.Summaries {
		require.Equal(s.T(), int64(7), sum.RouteID)
		require.Equal(s.T(), "A", sum.Driver)
		require.Equal(s.T(), 2, sum.Stops)
		require.Equal(s.T(), int64(40), sum.DistanceKm)
		require.Equal(s.T(), 95.0, sum.FillRatePercent)
		require.Equal(s.T(), "06:00", sum.Arrival)
		require.Equal(s.T(), "09:00", sum.Departure)
		require.Equal(s.T(), "03:00", sum.Duration)
		require.Equal(s.T(), 230.0, sum.Cost)
	}
	require.Equal(s.T(), "Geel", res.Summaries[0].Location)
	require.Equal(s.T(), "Jumet", res.Summaries[1].Location)
}

func (s *BuildSuite) TestEmptySourceAddsNoGroups() {
	s.batches = append(s.batches, models.SourceBatch{Name: "Triton"})

	res, err := report.Build(s.batches, report.Options{})
	require.NoError(s.T(), err)
	require.Len(s.T(), res.Summaries, 2)
	require.Equal(s.T(), []string{"Jumet", "Geel", "Triton"}, res.Sources)
}

func (s *BuildSuite) TestDepotOnlyRouteAppears() {
	s.batches[1].Records = []models.StopRecord{
		stop(8, "B", "DEPOT1", "DEPOT", 0, 0, hm(6, 0), hm(6, 10)),
	}
	res, err := report.Build(s.batches, report.Options{DepotMarker: "DEPOT"})
	require.NoError(s.T(), err)
	require.Len(s.T(), res.Summaries, 2)
	require.Equal(s.T(), "Geel", res.Summaries[0].Location)
	require.Equal(s.T(), 0, res.Summaries[0].Stops)
}

func (s *BuildSuite) TestNoSources() {
	_, err := report.Build(nil, report.Options{})
	require.True(s.T(), errors.Is(err, models.ErrNoSources))
}

func (s *BuildSuite) TestMalformedAbortsRun() {
	s.batches[0].Records[1].DriverName = ""
	res, err := report.Build(s.batches, report.Options{})
	require.Nil(s.T(), res)
	var malformed *models.MalformedInputError
	require.True(s.T(), errors.As(err, &malformed))
	require.Equal(s.T(), 2, malformed.Row)
}

func TestBuildSuite(t *testing.T) {
	suite.Run(t, new(BuildSuite))
}
