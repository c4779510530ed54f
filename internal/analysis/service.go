// Package analysis derives structured sales insight from a call transcript.
// The engine is a pure function of the transcript text: no I/O, no clock, no
// randomness. Scores and classifications are exact contract values covered by
// regression tests on literal transcripts.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z']+`)

// Fixed vocabularies. These are immutable module-level tables with no
// lifecycle beyond process start.
var positiveTerms = []string{
	"great", "excellent", "love", "excited", "amazing", "helpful", "confident", "progress",
}

// negativeTerms is kept sorted; pain points are emitted in this order.
var negativeTerms = []string{
	"concern", "expensive", "frustrated", "issue", "problem", "risk", "slow",
}

// objectionTerms is the narrower fixed subset surfaced as objections.
var objectionTerms = []string{"expensive", "concern", "risk"}

var nextStepTriggers = []string{"will", "next", "send", "schedule", "follow"}

var bantKeywords = map[string][]string{
	"budget":    {"budget", "cost", "price"},
	"authority": {"decision maker", "vp", "director", "cfo"},
	"need":      {"problem", "need", "challenge", "pain"},
	"timeline":  {"timeline", "quarter", "month", "deadline"},
}

var keyMomentChecks = []struct {
	label   string
	keyword string
}{
	{"budget_discussion", "budget"},
	{"timeline_mention", "timeline"},
	{"decision_maker", "decision maker"},
	{"pricing_conversation", "price"},
	{"demo_request", "demo"},
	{"contract_discussion", "contract"},
}

const summaryWordLimit = 48

type ExecutiveSummary struct {
	Overview string `json:"overview"`
	CallType string `json:"call_type"`
	Outcome  string `json:"outcome"`
}

type Scores struct {
	SentimentScore     int `json:"sentiment_score"`
	BuyingIntentScore  int `json:"buying_intent_score"`
	ClosingProbability int `json:"closing_probability"`
	EngagementScore    int `json:"engagement_score"`
}

type BANT struct {
	Budget    string `json:"budget"`
	Authority string `json:"authority"`
	Need      string `json:"need"`
	Timeline  string `json:"timeline"`
}

type FrameworkCues struct {
	EmotionalTrigger string `json:"emotional_trigger"`
	DealRiskMoment   string `json:"deal_risk_moment"`
}

type CompetitiveCues struct {
	CompetitivePressure string `json:"competitive_pressure"`
	RecommendedPosture  string `json:"recommended_posture"`
}

type MethodologyInsights struct {
	MugicaKeuilian FrameworkCues   `json:"mugica_keuilian"`
	BillWalsh      CompetitiveCues `json:"bill_walsh"`
}

type NextStep struct {
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Status      string `json:"status"`
}

type DripStep struct {
	Day     int    `json:"day"`
	Goal    string `json:"goal"`
	Message string `json:"message"`
}

type FollowUp struct {
	Subject                  string     `json:"subject"`
	DraftBody                string     `json:"draft_body"`
	NegativeReverseSellLine  string     `json:"negative_reverse_sell_line"`
	ObjectionNeutralizerLine string     `json:"objection_neutralizer_line"`
	DripSequence             []DripStep `json:"drip_sequence"`
	ReferencedMoments        []string   `json:"referenced_moments"`
}

type StructuredPayload struct {
	SchemaVersion     string `json:"schema_version"`
	CRMReady          bool   `json:"crm_ready"`
	ConversationState string `json:"conversation_state"`
}

type Result struct {
	ExecutiveSummary    ExecutiveSummary    `json:"executive_summary"`
	Scores              Scores              `json:"scores"`
	BANT                BANT                `json:"bant"`
	PainPoints          []string            `json:"pain_points"`
	Objections          []string            `json:"objections"`
	KeyMoments          []string            `json:"key_moments"`
	MethodologyInsights MethodologyInsights `json:"methodology_insights"`
	NextSteps           []NextStep          `json:"next_steps"`
	FollowUp            FollowUp            `json:"follow_up"`
	StructuredPayload   StructuredPayload   `json:"structured_payload"`
}

// Analyze derives the full insight record from a transcript. Calling it twice
// on the same transcript yields identical output.
func Analyze(transcript string) *Result {
	normalized := strings.ToLower(transcript)
	counts := termCounts(normalized)

	positive := sumCounts(counts, positiveTerms)
	negative := sumCounts(counts, negativeTerms)

	sentiment := clamp(5+positive-negative, 1, 10)
	buyingIntent := clamp(counts["budget"]+counts["timeline"]+counts["decision"]+counts["next"]+2, 1, 10)
	closingProbability := clamp(42+positive*8-negative*9+buyingIntent*4, 1, 100)
	engagement := clamp(sentiment+1, 1, 10)

	summary := summarize(transcript)

	return &Result{
		ExecutiveSummary: ExecutiveSummary{
			Overview: summary,
			CallType: inferCallType(normalized),
			Outcome:  inferOutcome(normalized),
		},
		Scores: Scores{
			SentimentScore:     sentiment,
			BuyingIntentScore:  buyingIntent,
			ClosingProbability: closingProbability,
			EngagementScore:    engagement,
		},
		BANT:                extractBANT(normalized),
		PainPoints:          presentTerms(counts, negativeTerms),
		Objections:          presentTerms(counts, objectionTerms),
		KeyMoments:          keyMoments(normalized),
		MethodologyInsights: methodologyInsights(normalized),
		NextSteps:           ExtractNextSteps(transcript),
		FollowUp:            generateFollowUp(transcript, summary),
		StructuredPayload: StructuredPayload{
			SchemaVersion:     "v1",
			CRMReady:          true,
			ConversationState: conversationState(closingProbability),
		},
	}
}

// ExtractNextSteps splits the original transcript on sentence-ending periods
// and keeps fragments containing a trigger word, capped at 10. A fragment
// mentioning "you will" is owned by the prospect, everything else by the rep.
func ExtractNextSteps(transcript string) []NextStep {
	steps := []NextStep{}
	for _, line := range strings.Split(transcript, ".") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowered := strings.ToLower(line)
		if !containsAny(lowered, nextStepTriggers) {
			continue
		}
		owner := "rep"
		if strings.Contains(lowered, "you will") {
			owner = "prospect"
		}
		steps = append(steps, NextStep{Description: line, Owner: owner, Status: "open"})
		if len(steps) == 10 {
			break
		}
	}
	return steps
}

func termCounts(normalized string) map[string]int {
	counts := make(map[string]int)
	for _, word := range wordPattern.FindAllString(normalized, -1) {
		counts[word]++
	}
	return counts
}

func sumCounts(counts map[string]int, terms []string) int {
	total := 0
	for _, term := range terms {
		total += counts[term]
	}
	return total
}

// presentTerms keeps the terms observed in the transcript, preserving the
// (sorted) vocabulary order for deterministic output.
func presentTerms(counts map[string]int, terms []string) []string {
	present := []string{}
	for _, term := range terms {
		if counts[term] > 0 {
			present = append(present, term)
		}
	}
	return present
}

func summarize(transcript string) string {
	words := strings.Fields(transcript)
	if len(words) > summaryWordLimit {
		words = words[:summaryWordLimit]
	}
	return strings.Join(words, " ")
}

func inferCallType(normalized string) string {
	if strings.Contains(normalized, "demo") {
		return "demo"
	}
	if strings.Contains(normalized, "proposal") || strings.Contains(normalized, "pricing") {
		return "negotiation"
	}
	return "discovery"
}

func inferOutcome(normalized string) string {
	if strings.Contains(normalized, "next week") || strings.Contains(normalized, "schedule") {
		return "next_step_confirmed"
	}
	if strings.Contains(normalized, "follow up") {
		return "follow_up_needed"
	}
	return "open"
}

func extractBANT(normalized string) BANT {
	status := func(dimension string) string {
		if containsAny(normalized, bantKeywords[dimension]) {
			return "covered"
		}
		return "missing"
	}
	return BANT{
		Budget:    status("budget"),
		Authority: status("authority"),
		Need:      status("need"),
		Timeline:  status("timeline"),
	}
}

func keyMoments(normalized string) []string {
	moments := []string{}
	for _, check := range keyMomentChecks {
		if strings.Contains(normalized, check.keyword) {
			moments = append(moments, check.label)
		}
	}
	return moments
}

func methodologyInsights(normalized string) MethodologyInsights {
	framework := FrameworkCues{EmotionalTrigger: "confidence", DealRiskMoment: "none_detected"}
	if strings.Contains(normalized, "urgent") {
		framework.EmotionalTrigger = "urgency"
	}
	if strings.Contains(normalized, "expensive") {
		framework.DealRiskMoment = "pricing_pushback"
	}

	competitive := CompetitiveCues{CompetitivePressure: "low", RecommendedPosture: "consultative"}
	if strings.Contains(normalized, "competitor") || strings.Contains(normalized, "alternative") {
		competitive.CompetitivePressure = "high"
		competitive.RecommendedPosture = "differentiate_on_roi"
	}

	return MethodologyInsights{MugicaKeuilian: framework, BillWalsh: competitive}
}

func conversationState(closingProbability int) string {
	if closingProbability >= 75 {
		return "hot"
	}
	if closingProbability >= 50 {
		return "warm"
	}
	return "nurture"
}

func generateFollowUp(transcript, summary string) FollowUp {
	referenced := []string{}
	for _, line := range strings.Split(transcript, ".") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		referenced = append(referenced, line)
		if len(referenced) == 2 {
			break
		}
	}

	body := fmt.Sprintf(
		"Thanks again for the conversation today. Key themes we aligned on: %s. "+
			"As a next step, I will send a tailored recommendation and timeline options. "+
			"If priorities shift, just reply and we can adapt quickly.\n\n"+
			"Unsubscribe: {{dynamic_unsubscribe_link}}",
		summary,
	)

	return FollowUp{
		Subject:                  "Next steps from our sales strategy call",
		DraftBody:                body,
		NegativeReverseSellLine:  "If this is not the right quarter, we can pause and revisit later.",
		ObjectionNeutralizerLine: "If budget is tight, we can phase rollout to protect ROI early.",
		DripSequence: []DripStep{
			{Day: 2, Goal: "share value recap", Message: "Quick recap of agreed priorities and expected outcomes."},
			{Day: 5, Goal: "reduce friction", Message: "Happy to adapt scope if internal bandwidth is constrained."},
		},
		ReferencedMoments: referenced,
	}
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
