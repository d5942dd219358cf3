package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/utils"
)

// ============================================================================
// FEEDBACK AGENT
// ============================================================================

// KeyFeedback identifies the feedback simulation step.
const KeyFeedback = "feedback"

// demographicModel describes one audience segment's behavior traits.
type demographicModel struct {
	CommunicationPreferences string
	DecisionFactors          []string
	ResponsePatterns         string
	TechnologyComfort        string
}

var demographicModels = map[string]demographicModel{
	"age_40_plus": {
		CommunicationPreferences: "clear, formal, trustworthy",
		DecisionFactors:          []string{"security", "reliability", "value"},
		ResponsePatterns:         "methodical, risk-averse",
		TechnologyComfort:        "moderate",
	},
	"millennials": {
		CommunicationPreferences: "authentic, mobile-first, interactive",
		DecisionFactors:          []string{"convenience", "social_proof", "innovation"},
		ResponsePatterns:         "quick, research-oriented",
		TechnologyComfort:        "high",
	},
	"business_customers": {
		CommunicationPreferences: "professional, data-driven, efficient",
		DecisionFactors:          []string{"ROI", "efficiency", "scalability"},
		ResponsePatterns:         "analytical, time-conscious",
		TechnologyComfort:        "high",
	},
	"healthcare_patients": {
		CommunicationPreferences: "caring, private, informative",
		DecisionFactors:          []string{"trust", "convenience", "health_outcomes"},
		ResponsePatterns:         "cautious, value-seeking",
		TechnologyComfort:        "varied",
	},
}

// feedbackContext maps scenarios to simulation context lines.
var feedbackContext = map[string][]string{
	"insurance_renewal": {
		"Customers are evaluating policy value and trust in insurer",
		"Renewal decisions are often routine but price-sensitive",
		"Clear communication about benefits is crucial",
		"Timing of communication affects response rates",
	},
	"healthcare_reminder": {
		"Patients prioritize health but value convenience",
		"Trust in healthcare provider is paramount",
		"Privacy concerns affect communication preferences",
		"Health anxiety may influence response patterns",
	},
	"loan_reminder": {
		"Customers may be experiencing financial stress",
		"Clear, respectful communication is essential",
		"Payment convenience significantly affects response",
		"Trust and transparency build cooperation",
	},
	"ecommerce_promotion": {
		"Customers are deal-conscious and comparison shop",
		"Mobile optimization affects engagement",
		"Social proof and urgency drive action",
		"Personalization increases relevance",
	},
}

var defaultFeedbackContext = []string{
	"General customer communication scenario",
	"Focus on clear value proposition",
	"Consider customer convenience",
	"Build trust through transparency",
}

// MessageFeedback is simulated customer feedback for one message.
type MessageFeedback struct {
	MessageID            int      `json:"message_id"`
	SentimentScore       float64  `json:"sentiment_score"`
	ClarityScore         float64  `json:"clarity_score"`
	ActionLikelihood     float64  `json:"action_likelihood"`
	CustomerComments     []string `json:"customer_comments"`
	DemographicAppeal    string   `json:"demographic_appeal,omitempty"`
	BehavioralPrediction string   `json:"behavioral_prediction,omitempty"`
}

// FeedbackSummary aggregates the simulated feedback.
type FeedbackSummary struct {
	AvgSentiment             float64  `json:"avg_sentiment"`
	AvgClarity               float64  `json:"avg_clarity,omitempty"`
	AvgActionLikelihood      float64  `json:"avg_action_likelihood,omitempty"`
	SentimentRange           float64  `json:"sentiment_range,omitempty"`
	TopPerformingMessage     int      `json:"top_performing_message,omitempty"`
	PredictedResponseRate    float64  `json:"predicted_response_rate,omitempty"`
	PredictedRenewalRate     float64  `json:"predicted_renewal_rate,omitempty"`
	PredictedAppointmentRate float64  `json:"predicted_appointment_rate,omitempty"`
	PredictedConversionRate  float64  `json:"predicted_conversion_rate,omitempty"`
	KeyInsights              []string `json:"key_insights,omitempty"`
}

// FeedbackReport is the feedback agent's data payload.
type FeedbackReport struct {
	FeedbackSummary    FeedbackSummary   `json:"feedback_summary"`
	MessageFeedback    []MessageFeedback `json:"message_feedback"`
	BehavioralInsights []string          `json:"behavioral_insights,omitempty"`
	Scenario           string            `json:"scenario"`
	Methodology        string            `json:"simulation_methodology,omitempty"`
	ConfidenceLevel    float64           `json:"confidence_level,omitempty"`
	AnalysisDepth      string            `json:"analysis_depth,omitempty"`
	AnalysisMethod     string            `json:"analysis_method,omitempty"`
	Note               string            `json:"note,omitempty"`
}

// FeedbackAgent simulates customer feedback for the drafted messages using
// demographic behavior models.
type FeedbackAgent struct {
	*BaseAgent
}

// NewFeedbackAgent creates the feedback agent.
func NewFeedbackAgent(gateway Gateway, audits *audit.Store) *FeedbackAgent {
	agent := &FeedbackAgent{}
	agent.BaseAgent = newBaseAgent(KeyFeedback, gateway, audits, agent)
	return agent
}

func (a *FeedbackAgent) buildUserPrompt(in *Input, adaptations map[string]any) string {
	messages := draftMessages(in)

	audience := stringField(in.Fields, "audience", "general customers")
	ageGroup := stringField(in.Fields, "age_group", "all ages")
	model := demographicModels[mapToDemographicModel(audience, ageGroup, in.Scenario)]

	context, ok := feedbackContext[in.Scenario]
	if !ok {
		context = defaultFeedbackContext
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SCENARIO: %s\n", in.Scenario)
	fmt.Fprintf(&b, "TASK: Simulate realistic customer feedback for %d messages\n\n", len(messages))

	b.WriteString("CUSTOMER DEMOGRAPHIC PROFILE:\n")
	fmt.Fprintf(&b, "- Communication Preferences: %s\n", model.CommunicationPreferences)
	fmt.Fprintf(&b, "- Key Decision Factors: %s\n", strings.Join(model.DecisionFactors, ", "))
	fmt.Fprintf(&b, "- Response Patterns: %s\n", model.ResponsePatterns)
	fmt.Fprintf(&b, "- Technology Comfort: %s\n\n", model.TechnologyComfort)

	b.WriteString("SCENARIO CONTEXT:\n")
	for _, item := range context {
		fmt.Fprintf(&b, "- %s\n", item)
	}

	b.WriteString("\nMESSAGES TO EVALUATE:\n")
	if data, err := json.MarshalIndent(messages, "", "  "); err == nil {
		b.Write(data)
	}

	b.WriteString("\n\nFEEDBACK SIMULATION REQUIREMENTS:\n")
	b.WriteString("1. Provide realistic sentiment scores (1-10)\n")
	b.WriteString("2. Assess clarity and comprehension (1-10)\n")
	b.WriteString("3. Rate likelihood to take action (1-10)\n")
	b.WriteString("4. Generate authentic customer comments\n")
	b.WriteString("5. Consider demographic and scenario factors\n")
	b.WriteString("6. Provide behavioral insights\n\n")
	b.WriteString("RETURN FORMAT: Valid JSON only:\n")
	b.WriteString(`{"feedback_summary": {"avg_sentiment": 7.2, "predicted_response_rate": 0.15, "key_insights": ["insight1"]}, "message_feedback": [{"message_id": 1, "sentiment_score": 8, "clarity_score": 7, "action_likelihood": 6, "customer_comments": ["comment1"], "demographic_appeal": "high", "behavioral_prediction": "likely to engage"}]}`)

	return b.String()
}

func (a *FeedbackAgent) processResponse(content string, in *Input, adaptations map[string]any) any {
	var report FeedbackReport
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &report); err != nil {
		return a.fallbackAnalysis(in)
	}

	enhanceFeedback(&report, in.Scenario)
	report.BehavioralInsights = behavioralInsights(report, in.Scenario)
	report.Scenario = in.Scenario
	report.Methodology = "LLM-based demographic modeling"
	report.ConfidenceLevel = feedbackConfidence(report)

	return report
}

// fallbackAnalysis scores messages with word-count and call-to-action
// heuristics when the LLM reply is not parseable.
func (a *FeedbackAgent) fallbackAnalysis(in *Input) FeedbackReport {
	messages := draftMessages(in)

	feedback := make([]MessageFeedback, 0, len(messages))
	for i, msg := range messages {
		wordCount := len(strings.Fields(msg.Content))
		lower := strings.ToLower(msg.Content)

		sentiment := 5.0
		if wordCount > 10 && wordCount < 50 {
			sentiment = 7.0
		}
		clarity := 6.0
		if wordCount < 30 {
			clarity = 8.0
		}
		action := 4.0
		if strings.Contains(lower, "please") || strings.Contains(lower, "now") || strings.Contains(lower, "today") {
			action = 6.0
		}

		id := msg.MessageID
		if id == 0 {
			id = i + 1
		}
		feedback = append(feedback, MessageFeedback{
			MessageID:            id,
			SentimentScore:       sentiment,
			ClarityScore:         clarity,
			ActionLikelihood:     action,
			CustomerComments:     []string{"Fallback analysis - detailed feedback unavailable"},
			DemographicAppeal:    "moderate",
			BehavioralPrediction: "standard response expected",
		})
	}

	avgSentiment := 5.0
	if len(feedback) > 0 {
		var sum float64
		for _, f := range feedback {
			sum += f.SentimentScore
		}
		avgSentiment = sum / float64(len(feedback))
	}

	return FeedbackReport{
		FeedbackSummary: FeedbackSummary{
			AvgSentiment:          avgSentiment,
			PredictedResponseRate: 0.08,
			KeyInsights:           []string{"Fallback analysis applied - limited insights available"},
		},
		MessageFeedback: feedback,
		Scenario:        in.Scenario,
		AnalysisMethod:  "fallback_heuristic",
		Note:            "Used fallback analysis due to LLM parsing issues",
	}
}

// mapToDemographicModel selects the behavior model for the audience.
func mapToDemographicModel(audience, ageGroup, scenario string) string {
	audienceLower := strings.ToLower(audience)
	switch {
	case strings.Contains(ageGroup, "40") || strings.Contains(strings.ToLower(ageGroup), "above 40"):
		return "age_40_plus"
	case strings.Contains(audienceLower, "business") || strings.Contains(audienceLower, "corporate"):
		return "business_customers"
	case strings.Contains(scenario, "health") || strings.Contains(audienceLower, "patient"):
		return "healthcare_patients"
	default:
		return "millennials"
	}
}

// enhanceFeedback recomputes summary aggregates from the per-message scores
// and attaches scenario-specific rate predictions.
func enhanceFeedback(report *FeedbackReport, scenario string) {
	feedback := report.MessageFeedback
	if len(feedback) == 0 {
		return
	}

	var sentimentSum, claritySum, actionSum float64
	minSentiment, maxSentiment := feedback[0].SentimentScore, feedback[0].SentimentScore
	topMessage := feedback[0]

	for _, f := range feedback {
		sentimentSum += f.SentimentScore
		claritySum += f.ClarityScore
		actionSum += f.ActionLikelihood
		if f.SentimentScore < minSentiment {
			minSentiment = f.SentimentScore
		}
		if f.SentimentScore > maxSentiment {
			maxSentiment = f.SentimentScore
		}
		if f.SentimentScore > topMessage.SentimentScore {
			topMessage = f
		}
	}

	n := float64(len(feedback))
	report.FeedbackSummary.AvgSentiment = sentimentSum / n
	report.FeedbackSummary.AvgClarity = claritySum / n
	report.FeedbackSummary.AvgActionLikelihood = actionSum / n
	report.FeedbackSummary.SentimentRange = maxSentiment - minSentiment
	report.FeedbackSummary.TopPerformingMessage = topMessage.MessageID

	switch scenario {
	case "insurance_renewal":
		report.FeedbackSummary.PredictedRenewalRate = report.FeedbackSummary.AvgActionLikelihood / 10 * 0.8
	case "healthcare_reminder":
		report.FeedbackSummary.PredictedAppointmentRate = report.FeedbackSummary.AvgActionLikelihood / 10 * 0.7
	case "ecommerce_promotion":
		report.FeedbackSummary.PredictedConversionRate = report.FeedbackSummary.AvgActionLikelihood / 10 * 0.15
	}

	report.AnalysisDepth = "enhanced"
}

// behavioralInsights derives up to five threshold-based insights.
func behavioralInsights(report FeedbackReport, scenario string) []string {
	var insights []string

	summary := report.FeedbackSummary
	avgSentiment := summary.AvgSentiment
	avgClarity := summary.AvgClarity
	avgAction := summary.AvgActionLikelihood

	if avgSentiment >= 8 {
		insights = append(insights, "High emotional resonance - messages strongly connect with audience")
	} else if avgSentiment <= 4 {
		insights = append(insights, "Low emotional appeal - consider more engaging or relevant messaging")
	}

	if avgClarity <= 5 {
		insights = append(insights, "Clarity concerns - simplify language and structure")
	} else if avgClarity >= 8 {
		insights = append(insights, "Excellent clarity - messages are easy to understand")
	}

	if avgAction >= 7 {
		insights = append(insights, "Strong call-to-action effectiveness - high motivation to act")
	} else if avgAction <= 4 {
		insights = append(insights, "Weak action motivation - strengthen value proposition or urgency")
	}

	switch scenario {
	case "insurance_renewal":
		if avgSentiment > avgAction {
			insights = append(insights, "Good emotional connection but weak action drivers - add clearer next steps")
		}
	case "healthcare_reminder":
		if avgClarity > avgAction {
			insights = append(insights, "Clear communication but low urgency - emphasize health importance")
		}
	}

	if summary.SentimentRange > 3 {
		insights = append(insights, "High message performance variance - focus on top-performing elements")
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

// feedbackConfidence scores simulation confidence from sample size, score
// consistency, and comment completeness.
func feedbackConfidence(report FeedbackReport) float64 {
	feedback := report.MessageFeedback
	if len(feedback) == 0 {
		return 0.3
	}

	sampleSizeFactor := float64(len(feedback)) / 5
	if sampleSizeFactor > 1 {
		sampleSizeFactor = 1
	}
	consistencyFactor := 1.0 - report.FeedbackSummary.SentimentRange/10

	completenessFactor := 1.0
	for _, f := range feedback {
		if len(f.CustomerComments) == 0 {
			completenessFactor = 0.8
			break
		}
	}

	return roundTo((sampleSizeFactor+consistencyFactor+completenessFactor)/3, 2)
}
