package scoring

import (
	"strings"
	"time"
)

const (
	categoryFirmographics = "firmographics"
	categoryChannel       = "channel_quality"
	categoryRecency       = "engagement_recency"
	categoryCompleteness  = "profile_completeness"
)

// targetIndustries are the verticals sales currently prioritizes.
var targetIndustries = []string{
	"technology",
	"software",
	"saas",
	"finance",
	"fintech",
	"healthcare",
	"ecommerce",
	"logistics",
	"manufacturing",
}

// sourceTiers ranks intake channels by historical close rate.
var sourceTiers = map[string]int{
	"referral":  25,
	"website":   20,
	"event":     15,
	"webinar":   15,
	"social":    10,
	"cold_list": 5,
}

// LeadSignals captures the lead attributes used for scoring. Recency is
// derived from LastActivityAt relative to Now so callers control the clock.
type LeadSignals struct {
	Company        string
	Industry       string
	Source         string
	Phone          string
	Notes          string
	LastActivityAt time.Time
	Now            time.Time
}

// ScoreResult reports the aggregate score and the per-category breakdown.
type ScoreResult struct {
	Total     int
	Breakdown map[string]int
}

// ComputeScore evaluates the provided signals and returns the score breakdown.
// The function is pure: identical signals always yield identical results.
func ComputeScore(input LeadSignals) ScoreResult {
	breakdown := map[string]int{
		categoryFirmographics: scoreFirmographics(input),
		categoryChannel:       scoreChannelQuality(input),
		categoryRecency:       scoreEngagementRecency(input),
		categoryCompleteness:  scoreProfileCompleteness(input),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return ScoreResult{
		Total:     total,
		Breakdown: breakdown,
	}
}

func scoreFirmographics(input LeadSignals) int {
	score := 0
	if strings.TrimSpace(input.Company) != "" {
		score += 15
	}
	if isTargetIndustry(input.Industry) {
		score += 20
	}
	if score > 35 {
		return 35
	}
	return score
}

func scoreChannelQuality(input LeadSignals) int {
	source := strings.ToLower(strings.TrimSpace(input.Source))
	source = strings.ReplaceAll(source, " ", "_")
	score := sourceTiers[source]
	if score > 25 {
		return 25
	}
	return score
}

func scoreEngagementRecency(input LeadSignals) int {
	if input.LastActivityAt.IsZero() || input.Now.IsZero() {
		return 0
	}
	// Negative ages (clock skew, activity stamped just after Now) count as fresh.
	age := input.Now.Sub(input.LastActivityAt)
	switch {
	case age <= 24*time.Hour:
		return 25
	case age <= 72*time.Hour:
		return 18
	case age <= 7*24*time.Hour:
		return 10
	case age <= 30*24*time.Hour:
		return 5
	default:
		return 0
	}
}

func scoreProfileCompleteness(input LeadSignals) int {
	score := 0
	if strings.TrimSpace(input.Phone) != "" {
		score += 10
	}
	if strings.TrimSpace(input.Notes) != "" {
		score += 5
	}
	if score > 15 {
		return 15
	}
	return score
}

func isTargetIndustry(industry string) bool {
	normalized := strings.ToLower(strings.TrimSpace(industry))
	if normalized == "" {
		return false
	}
	for _, target := range targetIndustries {
		if normalized == target {
			return true
		}
	}
	return false
}
