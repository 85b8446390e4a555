package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrumkit/planning-poker/internal/models"
	"github.com/scrumkit/planning-poker/internal/scoring"
)

func voted(name string, value int) models.Player {
	return models.Player{Name: name, Points: &models.PointValue{Value: value}}
}

func votedUnknown(name string) models.Player {
	return models.Player{Name: name, Points: &models.PointValue{Unknown: true}}
}

func TestConsensusWhenAllAgree(t *testing.T) {
	summary := scoring.Summarize([]models.Player{voted("Ann", 5), voted("Bo", 5)})

	require.NotNil(t, summary.Average)
	assert.Equal(t, 5.0, *summary.Average)
	assert.Equal(t, 2, summary.Votes)
	assert.True(t, summary.Consensus)
}

func TestUnknownCardExcludedFromAverageAndBreaksConsensus(t *testing.T) {
	summary := scoring.Summarize([]models.Player{voted("Ann", 5), votedUnknown("Bo")})

	require.NotNil(t, summary.Average)
	assert.Equal(t, 5.0, *summary.Average, "the ? vote is excluded from the average")
	assert.Equal(t, 1, summary.Votes)
	assert.False(t, summary.Consensus)
}

func TestDisagreementBreaksConsensus(t *testing.T) {
	summary := scoring.Summarize([]models.Player{voted("Ann", 3), voted("Bo", 8), voted("Cy", 13)})

	require.NotNil(t, summary.Average)
	assert.Equal(t, 8.0, *summary.Average)
	assert.False(t, summary.Consensus)
}

func TestNoVotesMeansNoAverage(t *testing.T) {
	summary := scoring.Summarize([]models.Player{
		{Name: "Ann"},
		{Name: "Bo"},
	})

	assert.Nil(t, summary.Average, "no average is computed without votes")
	assert.Equal(t, 0, summary.Votes)
	assert.False(t, summary.Consensus)
}

func TestEmptyRoom(t *testing.T) {
	summary := scoring.Summarize(nil)

	assert.Nil(t, summary.Average)
	assert.Equal(t, 0, summary.Votes)
}

func TestSpectatorsAreIgnored(t *testing.T) {
	spectator := voted("Watcher", 21)
	spectator.IsSpectator = true

	summary := scoring.Summarize([]models.Player{voted("Ann", 5), voted("Bo", 5), spectator})

	require.NotNil(t, summary.Average)
	assert.Equal(t, 5.0, *summary.Average)
	assert.Equal(t, 2, summary.Votes)
	assert.True(t, summary.Consensus)
}

func TestNonVotersDoNotBreakConsensus(t *testing.T) {
	summary := scoring.Summarize([]models.Player{voted("Ann", 8), voted("Bo", 8), {Name: "Late"}})

	require.NotNil(t, summary.Average)
	assert.Equal(t, 8.0, *summary.Average)
	assert.True(t, summary.Consensus)
}
