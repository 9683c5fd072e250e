package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseForTurnCount(t *testing.T) {
	cases := []struct {
		turns int
		want  Phase
	}{
		{0, PhaseOpening},
		{2, PhaseOpening},
		{3, PhaseExploration},
		{8, PhaseExploration},
		{9, PhaseDeepening},
		{20, PhaseDeepening},
		{21, PhaseMature},
		{100, PhaseMature},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PhaseForTurnCount(tc.turns), "turns=%d", tc.turns)
	}
}

func TestPhaseForTurnCount_Monotonic(t *testing.T) {
	order := map[Phase]int{
		PhaseOpening:     0,
		PhaseExploration: 1,
		PhaseDeepening:   2,
		PhaseMature:      3,
	}
	prev := PhaseForTurnCount(0)
	for turns := 1; turns <= 50; turns++ {
		cur := PhaseForTurnCount(turns)
		assert.GreaterOrEqual(t, order[cur], order[prev], "phase regressed at %d turns", turns)
		prev = cur
	}
}

func TestParamsFor(t *testing.T) {
	p := ParamsFor(PhaseOpening, IntentResumeReview)
	assert.Equal(t, 450, p.MaxTokens)
	assert.Equal(t, 0.5, p.Temperature)

	p = ParamsFor(PhaseExploration, IntentLearningPath)
	assert.Equal(t, 700, p.MaxTokens)
	assert.Equal(t, 0.65, p.Temperature)

	p = ParamsFor(PhaseDeepening, IntentInterviewPrep)
	assert.Equal(t, 850, p.MaxTokens)
	assert.Equal(t, 0.75, p.Temperature)

	p = ParamsFor(PhaseMature, IntentResumeReview)
	assert.Equal(t, 1000, p.MaxTokens)
	assert.Equal(t, 0.8, p.Temperature)
}

func TestParamsFor_JobIntentBonus(t *testing.T) {
	p := ParamsFor(PhaseExploration, IntentFindJobs)
	assert.Equal(t, 700+jobIntentTokenBonus, p.MaxTokens)
}

func TestParamsFor_GeneralStaysConservative(t *testing.T) {
	p := ParamsFor(PhaseMature, IntentGeneral)
	assert.Equal(t, 0.5, p.Temperature)
	assert.Equal(t, 1000, p.MaxTokens)
}
