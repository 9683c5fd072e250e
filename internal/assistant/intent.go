package assistant

import (
	"regexp"
	"strings"

	"github.com/Rareminds-eym/skillpassport-sub002/internal/store"
)

type Intent string

const (
	IntentFindJobs          Intent = "find-jobs"
	IntentSkillGap          Intent = "skill-gap"
	IntentCareerGuidance    Intent = "career-guidance"
	IntentApplicationStatus Intent = "application-status"
	IntentInterviewPrep     Intent = "interview-prep"
	IntentResumeReview      Intent = "resume-review"
	IntentLearningPath      Intent = "learning-path"
	IntentGeneral           Intent = "general"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type IntentResult struct {
	Intent     Intent
	Score      int
	Confidence Confidence
	Secondary  Intent // "" when none
}

const (
	strongWeight    = 25
	weakWeight      = 8
	historyBoost    = 10
	highThreshold   = 50
	mediumThreshold = 25
	generalFloor    = 15
	secondaryFloor  = 15

	greetingMaxLen = 5
	recentWindow   = 3
)

type intentRule struct {
	intent Intent
	strong []string
	weak   []string
}

// Rule order is the tie-break for equal scores.
var intentRules = []intentRule{
	{
		intent: IntentFindJobs,
		strong: []string{
			"find job", "find me a job", "job opening", "job opportunit",
			"recommend job", "show job", "looking for job", "need a job",
			"job match", "vacancy", "hiring", "placement", "find me",
		},
		weak: []string{"job", "apply", "position", "employ", "opportunit"},
	},
	{
		intent: IntentSkillGap,
		strong: []string{
			"skill gap", "missing skill", "what skills do i need",
			"which skills", "improve my skills", "upskill", "reskill",
		},
		weak: []string{"skill", "weak", "lacking", "improve"},
	},
	{
		intent: IntentApplicationStatus,
		strong: []string{
			"application status", "my applications", "did i get",
			"applied to", "application update", "status of my application",
		},
		weak: []string{"application", "status", "applied"},
	},
	{
		intent: IntentInterviewPrep,
		strong: []string{
			"interview", "mock interview", "interview question",
			"interview tip", "prepare for interview",
		},
		weak: []string{"prepare", "practice", "question"},
	},
	{
		intent: IntentResumeReview,
		strong: []string{
			"resume", "my cv", "improve resume", "resume review",
			"resume feedback", "optimize resume",
		},
		weak: []string{"review", "feedback", "portfolio"},
	},
	{
		intent: IntentLearningPath,
		strong: []string{
			"learning path", "what should i learn", "recommend course",
			"suggest course", "roadmap", "how to learn", "teach me",
			"best course",
		},
		weak: []string{"learn", "course", "study", "tutorial", "training"},
	},
	{
		intent: IntentCareerGuidance,
		strong: []string{
			"career path", "career advice", "career guidance",
			"career change", "switch career", "what career",
			"which field", "become a",
		},
		weak: []string{"career", "future", "field", "profession", "direction"},
	},
}

var greetingPattern = regexp.MustCompile(`^(hi|hello|hey|yo|thanks|thank you|ok|okay|good (morning|afternoon|evening))[.!?\s]*$`)

// jobRelatedIntents is the subset whose context needs the opportunity
// listing fetch.
var jobRelatedIntents = map[Intent]bool{
	IntentFindJobs:          true,
	IntentSkillGap:          true,
	IntentCareerGuidance:    true,
	IntentApplicationStatus: true,
}

func (i Intent) JobRelated() bool { return jobRelatedIntents[i] }

// ClassifyIntent scores the message against the weighted rule set.
// Pure and deterministic: same message, chips and history always
// produce the same result.
func ClassifyIntent(message string, selectedChips []string, history []store.Turn) IntentResult {
	trimmed := strings.TrimSpace(strings.ToLower(message))

	// Pleasantries never reach rule scoring.
	if len(trimmed) < greetingMaxLen || greetingPattern.MatchString(trimmed) {
		return IntentResult{Intent: IntentGeneral, Score: 100, Confidence: ConfidenceHigh}
	}

	recent := history
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}

	chipSet := make(map[string]bool, len(selectedChips))
	for _, chip := range selectedChips {
		chipSet[strings.ToLower(strings.TrimSpace(chip))] = true
	}

	scores := make([]int, len(intentRules))
	for idx, rule := range intentRules {
		score := 0
		for _, p := range rule.strong {
			if strings.Contains(trimmed, p) {
				score += strongWeight
			}
		}
		for _, p := range rule.weak {
			if strings.Contains(trimmed, p) {
				score += weakWeight
			}
		}
		// A selected chip naming the intent counts as a strong hit.
		if chipSet[string(rule.intent)] {
			score += strongWeight
		}
		// Contextual boost: one per recent turn touching this topic.
		for _, turn := range recent {
			content := strings.ToLower(turn.Content)
			for _, p := range rule.strong {
				if strings.Contains(content, p) {
					score += historyBoost
					break
				}
			}
		}
		scores[idx] = score
	}

	best, second := -1, -1
	for idx := range intentRules {
		if best < 0 || scores[idx] > scores[best] {
			second = best
			best = idx
		} else if second < 0 || scores[idx] > scores[second] {
			second = idx
		}
	}

	topScore := scores[best]
	result := IntentResult{Intent: intentRules[best].intent, Score: topScore}

	switch {
	case topScore >= highThreshold:
		result.Confidence = ConfidenceHigh
	case topScore >= mediumThreshold:
		result.Confidence = ConfidenceMedium
	default:
		result.Confidence = ConfidenceLow
	}

	if result.Confidence == ConfidenceLow && topScore < generalFloor {
		return IntentResult{Intent: IntentGeneral, Score: topScore, Confidence: ConfidenceLow}
	}

	if second >= 0 && scores[second] > secondaryFloor && intentRules[second].intent != result.Intent {
		result.Secondary = intentRules[second].intent
	}
	return result
}

// topicOf labels a single turn for memory breadcrumbs. Strong
// patterns only; weak hits are too noisy for a digest.
func topicOf(content string) Intent {
	lower := strings.ToLower(content)
	for _, rule := range intentRules {
		for _, p := range rule.strong {
			if strings.Contains(lower, p) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
