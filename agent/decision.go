package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/utils"
)

// ============================================================================
// DECISION AGENT
// ============================================================================

// KeyDecision identifies the decision optimization step.
const KeyDecision = "decision"

// Deployment statuses for the recommended message.
const (
	DeployImmediate      = "APPROVED_FOR_IMMEDIATE_DEPLOYMENT"
	DeployWithMonitoring = "APPROVED_WITH_MONITORING"
	DeployRequiresReview = "REQUIRES_REVIEW"
)

// decisionWeights are the scenario-specific scoring weights. They sum to 1.
type decisionWeights struct {
	ComplianceScore   float64 `json:"compliance_score"`
	CustomerSentiment float64 `json:"customer_sentiment"`
	ActionLikelihood  float64 `json:"action_likelihood"`
	Clarity           float64 `json:"clarity"`
}

var scenarioWeights = map[string]decisionWeights{
	"insurance_renewal":   {0.4, 0.3, 0.2, 0.1},
	"healthcare_reminder": {0.5, 0.2, 0.2, 0.1},
	"loan_reminder":       {0.45, 0.25, 0.2, 0.1},
	"ecommerce_promotion": {0.3, 0.25, 0.35, 0.1},
}

var defaultWeights = decisionWeights{0.35, 0.3, 0.25, 0.1}

// ComponentScores breaks a composite score into its weighted inputs.
type ComponentScores struct {
	Compliance float64 `json:"compliance"`
	Sentiment  float64 `json:"sentiment"`
	Action     float64 `json:"action"`
	Clarity    float64 `json:"clarity"`
}

// MessageRanking is one message's position in the composite ranking.
type MessageRanking struct {
	MessageID       int             `json:"message_id"`
	CompositeScore  float64         `json:"composite_score"`
	ComponentScores ComponentScores `json:"component_scores"`
	Rank            int             `json:"rank"`
}

// DeploymentPlan is the operational guidance for the recommended message.
type DeploymentPlan struct {
	DeploymentStatus       string   `json:"deployment_status"`
	Recommendations        []string `json:"recommendations"`
	MonitoringRequirements []string `json:"monitoring_requirements"`
	SuccessMetrics         []string `json:"success_metrics"`
}

// DecisionReport is the decision agent's data payload.
type DecisionReport struct {
	RecommendedMessageID      int              `json:"recommended_message_id"`
	Confidence                float64          `json:"confidence"`
	CompositeScore            float64          `json:"composite_score,omitempty"`
	Ranking                   []MessageRanking `json:"ranking"`
	Rationale                 string           `json:"rationale,omitempty"`
	PredictedOutcomes         map[string]any   `json:"predicted_outcomes"`
	OptimizationSuggestions   []string         `json:"optimization_suggestions,omitempty"`
	RiskAssessment            string           `json:"risk_assessment"`
	DeploymentRecommendations DeploymentPlan   `json:"deployment_recommendations"`
	DecisionConfidence        float64          `json:"decision_confidence"`
	Scenario                  string           `json:"scenario"`
	Methodology               string           `json:"decision_methodology,omitempty"`
	WeightsApplied            decisionWeights  `json:"weights_applied"`
	AnalysisMethod            string           `json:"analysis_method,omitempty"`
	Note                      string           `json:"note,omitempty"`
}

var defaultObjectives = map[string][]string{
	"insurance_renewal": {
		"Maximize policy renewal rates",
		"Maintain regulatory compliance",
		"Preserve customer relationships",
		"Minimize complaints and churn",
	},
	"healthcare_reminder": {
		"Improve appointment attendance",
		"Enhance patient satisfaction",
		"Ensure HIPAA compliance",
		"Reduce administrative overhead",
	},
	"loan_reminder": {
		"Increase payment compliance",
		"Maintain customer relationships",
		"Ensure regulatory compliance",
		"Minimize default rates",
	},
	"ecommerce_promotion": {
		"Maximize conversion rates",
		"Increase customer engagement",
		"Build brand loyalty",
		"Optimize marketing ROI",
	},
}

var genericObjectives = []string{
	"Achieve communication objectives",
	"Maintain compliance standards",
	"Optimize customer experience",
	"Maximize business outcomes",
}

var monitoringRequirements = map[string][]string{
	"insurance_renewal": {
		"Monitor renewal completion rates",
		"Track customer service inquiries",
		"Watch for compliance complaints",
		"Analyze response timing patterns",
	},
	"healthcare_reminder": {
		"Monitor appointment scheduling rates",
		"Track patient satisfaction scores",
		"Watch for privacy-related concerns",
		"Analyze no-show rates",
	},
	"ecommerce_promotion": {
		"Monitor click-through rates",
		"Track conversion rates",
		"Watch unsubscribe rates",
		"Analyze customer engagement patterns",
	},
}

var genericMonitoring = []string{
	"Monitor response rates",
	"Track customer feedback",
	"Watch for compliance issues",
	"Analyze performance metrics",
}

var successMetrics = map[string][]string{
	"insurance_renewal": {
		"Renewal rate > 80%",
		"Customer satisfaction > 8.0",
		"Compliance score > 85%",
		"Response time < 24 hours",
	},
	"healthcare_reminder": {
		"Appointment attendance > 85%",
		"Patient satisfaction > 8.5",
		"Compliance score > 90%",
		"Privacy incidents = 0",
	},
	"ecommerce_promotion": {
		"Conversion rate > baseline + 15%",
		"Engagement rate > 12%",
		"Unsubscribe rate < 2%",
		"Customer satisfaction > 7.5",
	},
}

var genericSuccessMetrics = []string{
	"Response rate > 10%",
	"Customer satisfaction > 7.0",
	"Compliance score > 80%",
	"No major issues reported",
}

// DecisionAgent selects the optimal message from the preceding analyses.
type DecisionAgent struct {
	*BaseAgent
}

// NewDecisionAgent creates the decision agent.
func NewDecisionAgent(gateway Gateway, audits *audit.Store) *DecisionAgent {
	agent := &DecisionAgent{}
	agent.BaseAgent = newBaseAgent(KeyDecision, gateway, audits, agent)
	return agent
}

func (a *DecisionAgent) buildUserPrompt(in *Input, adaptations map[string]any) string {
	drafting := draftReportFor(in)
	compliance := complianceReportFor(in)
	feedback := feedbackReportFor(in)

	objectives := stringSliceField(in.Fields, "business_objectives")
	if len(objectives) == 0 {
		var ok bool
		objectives, ok = defaultObjectives[in.Scenario]
		if !ok {
			objectives = genericObjectives
		}
	}
	riskTolerance := stringField(in.Fields, "risk_tolerance", "medium")
	weights := weightsFor(in.Scenario)

	var b strings.Builder
	fmt.Fprintf(&b, "SCENARIO: %s\n", in.Scenario)
	b.WriteString("TASK: Select the optimal message based on comprehensive analysis\n\n")

	b.WriteString("BUSINESS OBJECTIVES:\n")
	for _, objective := range objectives {
		if strings.TrimSpace(objective) != "" {
			fmt.Fprintf(&b, "- %s\n", objective)
		}
	}

	fmt.Fprintf(&b, "\nRISK TOLERANCE: %s\n\n", riskTolerance)

	b.WriteString("DECISION CRITERIA WEIGHTS:\n")
	fmt.Fprintf(&b, "- compliance_score: %.0f%%\n", weights.ComplianceScore*100)
	fmt.Fprintf(&b, "- customer_sentiment: %.0f%%\n", weights.CustomerSentiment*100)
	fmt.Fprintf(&b, "- action_likelihood: %.0f%%\n", weights.ActionLikelihood*100)
	fmt.Fprintf(&b, "- clarity: %.0f%%\n", weights.Clarity*100)

	b.WriteString("\nANALYSIS DATA:\n\nDRAFTING RESULTS:\n")
	writeJSONBlock(&b, drafting)
	b.WriteString("\nCOMPLIANCE RESULTS:\n")
	writeJSONBlock(&b, compliance)
	b.WriteString("\nFEEDBACK RESULTS:\n")
	writeJSONBlock(&b, feedback)

	b.WriteString("\nDECISION REQUIREMENTS:\n")
	b.WriteString("1. Rank all messages by composite score\n")
	b.WriteString("2. Consider scenario-specific priorities\n")
	b.WriteString("3. Account for risk tolerance level\n")
	b.WriteString("4. Provide strategic rationale\n")
	b.WriteString("5. Predict performance outcomes\n")
	b.WriteString("6. Suggest optimization opportunities\n\n")
	b.WriteString("RETURN FORMAT: Valid JSON only:\n")
	b.WriteString(`{"recommended_message_id": 1, "confidence": 0.85, "composite_score": 87.3, "ranking": [{"message_id": 1, "score": 87.3, "rank": 1}], "rationale": "Strategic reasoning", "predicted_outcomes": {"response_rate": 0.12, "compliance_risk": "LOW", "customer_satisfaction": 8.2}, "optimization_suggestions": ["suggestion1"], "risk_assessment": "LOW"}`)

	return b.String()
}

func (a *DecisionAgent) processResponse(content string, in *Input, adaptations map[string]any) any {
	var report DecisionReport
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &report); err != nil {
		return a.fallbackAnalysis(in)
	}

	compliance := complianceReportFor(in)
	feedback := feedbackReportFor(in)
	weights := weightsFor(in.Scenario)

	// Validate the recommendation against the analyzed set; an id the model
	// invented falls back to the first analyzed message.
	if len(compliance.MessageAnalyses) > 0 && !analysisExists(compliance.MessageAnalyses, report.RecommendedMessageID) {
		report.RecommendedMessageID = compliance.MessageAnalyses[0].MessageID
	}
	if report.RecommendedMessageID == 0 {
		report.RecommendedMessageID = 1
	}

	if len(report.Ranking) == 0 {
		report.Ranking = rankMessages(compliance, feedback, weights)
	}
	if report.PredictedOutcomes == nil {
		report.PredictedOutcomes = predictOutcomes(report.RecommendedMessageID, compliance, feedback, in.Scenario)
	}
	if report.RiskAssessment == "" {
		report.RiskAssessment = assessOverallRisk(report.RecommendedMessageID, compliance)
	}

	report.DeploymentRecommendations = deploymentPlan(report, in.Scenario)
	report.DecisionConfidence = decisionConfidence(report, in)
	report.Scenario = in.Scenario
	report.Methodology = "Multi-criteria LLM-based optimization"
	report.WeightsApplied = weights

	return report
}

// fallbackAnalysis ranks messages on compliance and sentiment alone when the
// LLM reply is not parseable.
func (a *DecisionAgent) fallbackAnalysis(in *Input) DecisionReport {
	compliance := complianceReportFor(in)
	feedback := feedbackReportFor(in)

	feedbackByID := feedbackLookup(feedback)

	type scored struct {
		id        int
		composite float64
	}
	var scores []scored
	for _, analysis := range compliance.MessageAnalyses {
		sentiment := 5.0
		if f, ok := feedbackByID[analysis.MessageID]; ok {
			sentiment = f.SentimentScore
		}
		scores = append(scores, scored{
			id:        analysis.MessageID,
			composite: analysis.ComplianceScore*0.6 + sentiment*10*0.4,
		})
	}

	recommendedID := 1
	compositeScore := 70.0
	ranking := []MessageRanking{}
	if len(scores) > 0 {
		sort.SliceStable(scores, func(i, j int) bool { return scores[i].composite > scores[j].composite })
		recommendedID = scores[0].id
		compositeScore = scores[0].composite
		for i, s := range scores {
			ranking = append(ranking, MessageRanking{
				MessageID:      s.id,
				CompositeScore: roundTo(s.composite, 1),
				Rank:           i + 1,
			})
		}
	}

	report := DecisionReport{
		RecommendedMessageID: recommendedID,
		Confidence:           0.6,
		CompositeScore:       compositeScore,
		Ranking:              ranking,
		Rationale:            "Fallback decision based on compliance and sentiment scores",
		PredictedOutcomes: map[string]any{
			"response_rate":   0.08,
			"compliance_risk": SeverityMedium,
		},
		RiskAssessment: SeverityMedium,
		Scenario:       in.Scenario,
		WeightsApplied: weightsFor(in.Scenario),
		AnalysisMethod: "fallback_rule_based",
		Note:           "Used fallback analysis due to LLM parsing issues",
	}
	report.DeploymentRecommendations = deploymentPlan(report, in.Scenario)
	report.DecisionConfidence = decisionConfidence(report, in)

	return report
}

// weightsFor selects the scoring weights for a scenario.
func weightsFor(scenario string) decisionWeights {
	if weights, ok := scenarioWeights[scenario]; ok {
		return weights
	}
	return defaultWeights
}

// rankMessages computes the weighted composite ranking across all analyzed
// messages.
func rankMessages(compliance ComplianceReport, feedback FeedbackReport, weights decisionWeights) []MessageRanking {
	if len(compliance.MessageAnalyses) == 0 {
		return []MessageRanking{}
	}

	feedbackByID := feedbackLookup(feedback)

	rankings := make([]MessageRanking, 0, len(compliance.MessageAnalyses))
	for _, analysis := range compliance.MessageAnalyses {
		sentiment, action, clarity := 5.0, 5.0, 5.0
		if f, ok := feedbackByID[analysis.MessageID]; ok {
			sentiment = f.SentimentScore
			action = f.ActionLikelihood
			clarity = f.ClarityScore
		}

		complianceNorm := analysis.ComplianceScore / 100
		composite := (complianceNorm*weights.ComplianceScore +
			sentiment/10*weights.CustomerSentiment +
			action/10*weights.ActionLikelihood +
			clarity/10*weights.Clarity) * 100

		rankings = append(rankings, MessageRanking{
			MessageID:      analysis.MessageID,
			CompositeScore: roundTo(composite, 1),
			ComponentScores: ComponentScores{
				Compliance: roundTo(analysis.ComplianceScore, 1),
				Sentiment:  roundTo(sentiment, 1),
				Action:     roundTo(action, 1),
				Clarity:    roundTo(clarity, 1),
			},
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].CompositeScore > rankings[j].CompositeScore
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	return rankings
}

// predictOutcomes estimates deployment outcomes for the recommended message.
func predictOutcomes(messageID int, compliance ComplianceReport, feedback FeedbackReport, scenario string) map[string]any {
	var analysis MessageAnalysis
	found := false
	for _, a := range compliance.MessageAnalyses {
		if a.MessageID == messageID {
			analysis = a
			found = true
			break
		}
	}
	complianceRisk := SeverityMedium
	if found && analysis.RiskLevel != "" {
		complianceRisk = analysis.RiskLevel
	}

	sentiment, action := 0.5, 0.5
	for _, f := range feedback.MessageFeedback {
		if f.MessageID == messageID {
			sentiment = f.SentimentScore / 10
			action = f.ActionLikelihood / 10
			break
		}
	}

	switch scenario {
	case "insurance_renewal":
		responseRate := math.Min(0.25, action*0.3)
		renewalRate := 0.75 * (0.8 + sentiment*0.2)
		return map[string]any{
			"response_rate":         roundTo(responseRate, 3),
			"renewal_rate":          roundTo(renewalRate, 3),
			"customer_satisfaction": roundTo(sentiment*10, 1),
			"compliance_risk":       complianceRisk,
		}
	case "healthcare_reminder":
		responseRate := math.Min(0.4, action*0.5)
		attendanceRate := 0.8 * (0.9 + sentiment*0.1)
		return map[string]any{
			"response_rate":          roundTo(responseRate, 3),
			"appointment_attendance": roundTo(attendanceRate, 3),
			"patient_satisfaction":   roundTo(sentiment*10, 1),
			"compliance_risk":        complianceRisk,
		}
	case "ecommerce_promotion":
		responseRate := math.Min(0.2, action*0.25)
		conversionRate := responseRate * sentiment * 0.6
		return map[string]any{
			"response_rate":    roundTo(responseRate, 3),
			"conversion_rate":  roundTo(conversionRate, 3),
			"engagement_score": roundTo(sentiment*10, 1),
			"compliance_risk":  complianceRisk,
		}
	default:
		return map[string]any{
			"response_rate":    roundTo(math.Min(0.15, action*0.2), 3),
			"engagement_score": roundTo(sentiment*10, 1),
			"compliance_risk":  complianceRisk,
		}
	}
}

// assessOverallRisk derives the risk level for the recommended message from
// its compliance verdict.
func assessOverallRisk(messageID int, compliance ComplianceReport) string {
	riskLevel := SeverityMedium
	complianceScore := 70.0
	violations := 0
	for _, analysis := range compliance.MessageAnalyses {
		if analysis.MessageID == messageID {
			if analysis.RiskLevel != "" {
				riskLevel = analysis.RiskLevel
			}
			complianceScore = analysis.ComplianceScore
			violations = len(analysis.Violations)
			break
		}
	}

	switch {
	case riskLevel == SeverityHigh || complianceScore < 60 || violations > 2:
		return SeverityHigh
	case riskLevel == SeverityMedium || complianceScore < 80 || violations > 0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// deploymentPlan derives the deployment status and operational guidance.
func deploymentPlan(report DecisionReport, scenario string) DeploymentPlan {
	complianceRisk := SeverityMedium
	if risk, ok := report.PredictedOutcomes["compliance_risk"].(string); ok {
		complianceRisk = risk
	}

	var status string
	var recommendations []string
	switch {
	case report.RiskAssessment == SeverityLow && report.Confidence >= 0.8 && complianceRisk == SeverityLow:
		status = DeployImmediate
		recommendations = []string{
			"Message is ready for deployment",
			"Monitor initial performance metrics",
			"Track customer feedback and compliance",
		}
	case report.RiskAssessment == SeverityMedium || report.Confidence >= 0.6:
		status = DeployWithMonitoring
		recommendations = []string{
			"Deploy with enhanced monitoring",
			"Review performance after 24-48 hours",
			"Be prepared to make adjustments",
			"Consider A/B testing with alternative messages",
		}
	default:
		status = DeployRequiresReview
		recommendations = []string{
			"Message requires additional review before deployment",
			"Address identified compliance concerns",
			"Consider regenerating messages with different parameters",
			"Seek legal/compliance team approval if needed",
		}
	}

	monitoring, ok := monitoringRequirements[scenario]
	if !ok {
		monitoring = genericMonitoring
	}
	metrics, ok := successMetrics[scenario]
	if !ok {
		metrics = genericSuccessMetrics
	}

	return DeploymentPlan{
		DeploymentStatus:       status,
		Recommendations:        recommendations,
		MonitoringRequirements: monitoring,
		SuccessMetrics:         metrics,
	}
}

// decisionConfidence combines data completeness, ranking separation, risk,
// and the model's own confidence into one score.
func decisionConfidence(report DecisionReport, in *Input) float64 {
	factors := make([]float64, 0, 4)

	// Data quality: fraction of upstream steps that completed successfully.
	var available float64
	for _, key := range []string{KeyDrafting, KeyCompliance, KeyFeedback} {
		if result, ok := in.Previous[key]; ok && result != nil && result.Success {
			available++
		}
	}
	factors = append(factors, available/3)

	// Ranking separation: a wider gap between the top two scores means a
	// clearer decision.
	if len(report.Ranking) >= 2 {
		gap := report.Ranking[0].CompositeScore - report.Ranking[1].CompositeScore
		factors = append(factors, math.Min(1.0, gap/20))
	} else {
		factors = append(factors, 0.5)
	}

	switch report.RiskAssessment {
	case SeverityLow:
		factors = append(factors, 1.0)
	case SeverityMedium:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.3)
	}

	llmConfidence := report.Confidence
	if llmConfidence == 0 {
		llmConfidence = 0.5
	}
	factors = append(factors, llmConfidence)

	var sum float64
	for _, f := range factors {
		sum += f
	}
	return roundTo(sum/float64(len(factors)), 2)
}

// analysisExists reports whether a message id appears in the analyses.
func analysisExists(analyses []MessageAnalysis, id int) bool {
	for _, analysis := range analyses {
		if analysis.MessageID == id {
			return true
		}
	}
	return false
}

// feedbackLookup indexes message feedback by id.
func feedbackLookup(report FeedbackReport) map[int]MessageFeedback {
	lookup := make(map[int]MessageFeedback, len(report.MessageFeedback))
	for _, f := range report.MessageFeedback {
		lookup[f.MessageID] = f
	}
	return lookup
}

// draftReportFor extracts the drafting payload with safe defaults.
func draftReportFor(in *Input) DraftReport {
	if data := in.PreviousData(KeyDrafting); data != nil {
		if report, ok := data.(DraftReport); ok {
			return report
		}
	}
	return DraftReport{Messages: []DraftMessage{}}
}

// complianceReportFor extracts the compliance payload with safe defaults.
func complianceReportFor(in *Input) ComplianceReport {
	if data := in.PreviousData(KeyCompliance); data != nil {
		if report, ok := data.(ComplianceReport); ok {
			return report
		}
	}
	return ComplianceReport{OverallCompliance: 50, MessageAnalyses: []MessageAnalysis{}}
}

// feedbackReportFor extracts the feedback payload with safe defaults.
func feedbackReportFor(in *Input) FeedbackReport {
	if data := in.PreviousData(KeyFeedback); data != nil {
		if report, ok := data.(FeedbackReport); ok {
			return report
		}
	}
	return FeedbackReport{MessageFeedback: []MessageFeedback{}}
}

// stringSliceField reads a string slice from the input fields, tolerating
// []any values from decoded JSON.
func stringSliceField(fields map[string]any, key string) []string {
	switch v := fields[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// writeJSONBlock appends an indented JSON rendering of v.
func writeJSONBlock(b *strings.Builder, v any) {
	if data, err := json.MarshalIndent(v, "", "  "); err == nil {
		b.Write(data)
		b.WriteString("\n")
	}
}
