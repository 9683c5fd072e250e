package assistant

type Phase string

const (
	PhaseOpening     Phase = "opening"
	PhaseExploration Phase = "exploration"
	PhaseDeepening   Phase = "deepening"
	PhaseMature      Phase = "mature"
)

// PhaseForTurnCount maps the turn count before the current message to
// a conversation phase. Recomputed every request so it can never
// drift from the stored history; monotonic in the turn count.
func PhaseForTurnCount(turns int) Phase {
	switch {
	case turns <= 2:
		return PhaseOpening
	case turns <= 8:
		return PhaseExploration
	case turns <= 20:
		return PhaseDeepening
	default:
		return PhaseMature
	}
}

// GenerationParams bound the upstream completion call.
type GenerationParams struct {
	MaxTokens   int
	Temperature float64
}

var phaseParams = map[Phase]GenerationParams{
	PhaseOpening:     {MaxTokens: 450, Temperature: 0.5},
	PhaseExploration: {MaxTokens: 700, Temperature: 0.65},
	PhaseDeepening:   {MaxTokens: 850, Temperature: 0.75},
	PhaseMature:      {MaxTokens: 1000, Temperature: 0.8},
}

// Opportunity-heavy answers need room for the listings themselves.
const jobIntentTokenBonus = 200

// ParamsFor selects generation parameters for a phase/intent pair:
// terse and conservative while rapport is building, longer and more
// exploratory once context has accumulated.
func ParamsFor(phase Phase, intent Intent) GenerationParams {
	p, ok := phaseParams[phase]
	if !ok {
		p = phaseParams[PhaseOpening]
	}
	if intent.JobRelated() {
		p.MaxTokens += jobIntentTokenBonus
	}
	if intent == IntentGeneral {
		p.Temperature = 0.5
	}
	return p
}
