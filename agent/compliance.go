package agent

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/utils"
)

// ============================================================================
// COMPLIANCE AGENT
// ============================================================================

// KeyCompliance identifies the compliance analysis step.
const KeyCompliance = "compliance"

// Severity levels and deployment recommendations.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"

	DeploymentApproved       = "APPROVED"
	DeploymentReviewRequired = "REVIEW_REQUIRED"
	DeploymentNotApproved    = "NOT_APPROVED"
)

// Violation is one detected compliance issue.
type Violation struct {
	Type           string `json:"type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	MatchedPattern string `json:"matched_pattern,omitempty"`
	Suggestion     string `json:"suggestion,omitempty"`
}

// MessageAnalysis is the per-message compliance verdict.
type MessageAnalysis struct {
	MessageID         int         `json:"message_id"`
	ComplianceScore   float64     `json:"compliance_score"`
	Violations        []Violation `json:"violations"`
	RiskLevel         string      `json:"risk_level"`
	RuleChecksApplied int         `json:"rule_based_checks_applied"`
}

// RiskMetrics aggregates risk across the analyzed message set.
type RiskMetrics struct {
	OverallRisk              string  `json:"overall_risk"`
	HighRiskMessages         int     `json:"high_risk_messages"`
	MediumRiskMessages       int     `json:"medium_risk_messages"`
	LowRiskMessages          int     `json:"low_risk_messages"`
	TotalViolations          int     `json:"total_violations"`
	AvgComplianceScore       float64 `json:"avg_compliance_score"`
	DeploymentRecommendation string  `json:"deployment_recommendation"`
}

// ComplianceReport is the compliance agent's data payload.
type ComplianceReport struct {
	OverallCompliance   float64           `json:"overall_compliance"`
	MessageAnalyses     []MessageAnalysis `json:"message_analyses"`
	ScenarioRisks       []string          `json:"scenario_risks,omitempty"`
	Recommendations     []string          `json:"recommendations,omitempty"`
	RiskMetrics         RiskMetrics       `json:"risk_metrics"`
	Scenario            string            `json:"scenario"`
	RuleSetApplied      string            `json:"rule_set_applied,omitempty"`
	TotalRuleViolations int               `json:"total_rule_violations"`
	Methodology         string            `json:"compliance_methodology,omitempty"`
	AnalysisMethod      string            `json:"analysis_method,omitempty"`
	Note                string            `json:"note,omitempty"`
}

// complianceRule is one pattern-based check.
type complianceRule struct {
	pattern  *regexp.Regexp
	severity string
	rule     string
}

// complianceRules are applied on top of the LLM analysis, keyed by rule set.
var complianceRules = map[string][]complianceRule{
	"financial_services": {
		{regexp.MustCompile(`(?i)guaranteed|promise|100%`), SeverityHigh, "No absolute guarantees"},
		{regexp.MustCompile(`(?i)click here|act now|urgent`), SeverityMedium, "Avoid high-pressure language"},
		{regexp.MustCompile(`(?i)free money|instant cash`), SeverityHigh, "No misleading financial claims"},
	},
	"healthcare": {
		{regexp.MustCompile(`(?i)cure|guaranteed healing|miracle`), SeverityHigh, "No medical claims"},
		{regexp.MustCompile(`(?i)personal health info`), SeverityHigh, "HIPAA compliance required"},
		{regexp.MustCompile(`(?i)diagnose|treatment guarantee`), SeverityHigh, "No medical advice"},
	},
	"general": {
		{regexp.MustCompile(`(?i)winner|you've won|congratulations`), SeverityMedium, "Avoid spam-like language"},
		{regexp.MustCompile(`(?i)limited time|expires soon|hurry`), SeverityLow, "Moderate urgency language"},
	},
}

// complianceFocus maps scenarios to the focus areas injected into the prompt.
var complianceFocus = map[string][]string{
	"insurance_renewal": {
		"TCPA compliance for automated messages",
		"Clear opt-out mechanisms",
		"Accurate policy information",
		"No misleading claims about coverage",
	},
	"healthcare_reminder": {
		"HIPAA privacy protection",
		"No medical advice or diagnosis",
		"Secure communication requirements",
		"Patient consent verification",
	},
	"loan_reminder": {
		"FDCPA debt collection rules",
		"Clear creditor identification",
		"No harassment or threats",
		"Accurate payment information",
	},
	"ecommerce_promotion": {
		"CAN-SPAM compliance",
		"Clear unsubscribe options",
		"Truthful advertising claims",
		"GDPR privacy requirements",
	},
}

var defaultComplianceFocus = []string{
	"General consumer protection",
	"Anti-spam regulations",
	"Clear communication requirements",
	"Opt-out mechanisms",
}

// ComplianceAgent analyzes drafted messages for regulatory violations using
// a hybrid of LLM analysis and deterministic pattern rules.
type ComplianceAgent struct {
	*BaseAgent
}

// NewComplianceAgent creates the compliance agent.
func NewComplianceAgent(gateway Gateway, audits *audit.Store) *ComplianceAgent {
	agent := &ComplianceAgent{}
	agent.BaseAgent = newBaseAgent(KeyCompliance, gateway, audits, agent)
	return agent
}

func (a *ComplianceAgent) buildUserPrompt(in *Input, adaptations map[string]any) string {
	messages := draftMessages(in)
	channel := stringField(in.Fields, "channel", "email")
	jurisdiction := stringField(in.Fields, "jurisdiction", "US")
	industry := stringField(in.Fields, "industry", "general")

	focus, ok := complianceFocus[in.Scenario]
	if !ok {
		focus = defaultComplianceFocus
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SCENARIO: %s\n", in.Scenario)
	fmt.Fprintf(&b, "TASK: Analyze %d messages for compliance violations\n", len(messages))
	fmt.Fprintf(&b, "CHANNEL: %s\n", channel)
	fmt.Fprintf(&b, "JURISDICTION: %s\n", jurisdiction)
	fmt.Fprintf(&b, "INDUSTRY: %s\n\n", industry)

	b.WriteString("COMPLIANCE FOCUS AREAS:\n")
	for _, area := range focus {
		fmt.Fprintf(&b, "- %s\n", area)
	}

	b.WriteString("\nMESSAGES TO ANALYZE:\n")
	if data, err := json.MarshalIndent(messages, "", "  "); err == nil {
		b.Write(data)
	}

	b.WriteString("\n\nANALYSIS REQUIREMENTS:\n")
	b.WriteString("1. Identify specific regulatory violations\n")
	b.WriteString("2. Assess risk level for each violation\n")
	b.WriteString("3. Provide improvement suggestions\n")
	b.WriteString("4. Calculate compliance score (0-100)\n")
	b.WriteString("5. Consider scenario-specific regulations\n\n")
	b.WriteString("RETURN FORMAT: Valid JSON only:\n")
	b.WriteString(`{"overall_compliance": 85, "total_messages_analyzed": 5, "message_analyses": [{"message_id": 1, "compliance_score": 90, "violations": [{"type": "rule_type", "severity": "HIGH", "description": "violation description", "suggestion": "improvement suggestion"}], "risk_level": "LOW"}], "scenario_risks": ["risk1"], "recommendations": ["rec1"]}`)

	return b.String()
}

func (a *ComplianceAgent) processResponse(content string, in *Input, adaptations map[string]any) any {
	var wire struct {
		OverallCompliance float64           `json:"overall_compliance"`
		MessageAnalyses   []MessageAnalysis `json:"message_analyses"`
		ScenarioRisks     []string          `json:"scenario_risks"`
		Recommendations   []string          `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &wire); err != nil {
		return a.fallbackAnalysis(in)
	}

	messages := draftMessages(in)
	ruleSet := ruleSetFor(in.Scenario)
	rules := complianceRules[ruleSet]

	analyses := make([]MessageAnalysis, 0, len(wire.MessageAnalyses))
	totalRuleViolations := 0

	for _, analysis := range wire.MessageAnalyses {
		content := contentForMessage(messages, analysis.MessageID)

		var ruleViolations []Violation
		for _, rule := range rules {
			if rule.pattern.MatchString(content) {
				ruleViolations = append(ruleViolations, Violation{
					Type:           "rule_based_check",
					Severity:       rule.severity,
					Description:    rule.rule,
					MatchedPattern: rule.pattern.String(),
					Suggestion:     fmt.Sprintf("Revise content to comply with %s", rule.rule),
				})
			}
		}

		analysis.Violations = append(analysis.Violations, ruleViolations...)
		analysis.RuleChecksApplied = len(ruleViolations)
		analysis.ComplianceScore = scoreViolations(analysis.Violations)
		analysis.RiskLevel = riskLevelFor(analysis.Violations)
		if analysis.Violations == nil {
			analysis.Violations = []Violation{}
		}

		totalRuleViolations += len(ruleViolations)
		analyses = append(analyses, analysis)
	}

	overall := wire.OverallCompliance
	if len(analyses) > 0 {
		var sum float64
		for _, analysis := range analyses {
			sum += analysis.ComplianceScore
		}
		overall = roundTo(sum/float64(len(analyses)), 1)
	}

	report := ComplianceReport{
		OverallCompliance:   overall,
		MessageAnalyses:     analyses,
		ScenarioRisks:       wire.ScenarioRisks,
		Recommendations:     wire.Recommendations,
		Scenario:            in.Scenario,
		RuleSetApplied:      ruleSet,
		TotalRuleViolations: totalRuleViolations,
		Methodology:         "LLM + Rule-based hybrid analysis",
	}
	report.RiskMetrics = calculateRiskMetrics(report)

	return report
}

// fallbackAnalysis is a pure rule-based analysis applied when the LLM reply
// is not parseable.
func (a *ComplianceAgent) fallbackAnalysis(in *Input) ComplianceReport {
	messages := draftMessages(in)

	fallbackRules := []complianceRule{
		{regexp.MustCompile(`(?i)guaranteed|promise|100%`), SeverityHigh, "Contains absolute guarantees"},
		{regexp.MustCompile(`(?i)click here|act now|urgent`), SeverityMedium, "High-pressure language detected"},
	}

	analyses := make([]MessageAnalysis, 0, len(messages))
	for i, msg := range messages {
		violations := []Violation{}
		for _, rule := range fallbackRules {
			if rule.pattern.MatchString(msg.Content) {
				suggestion := "Use gentler call-to-action language"
				vtype := "high_pressure"
				if rule.severity == SeverityHigh {
					suggestion = "Use qualified language like 'may' or 'potential'"
					vtype = "absolute_claims"
				}
				violations = append(violations, Violation{
					Type:        vtype,
					Severity:    rule.severity,
					Description: rule.rule,
					Suggestion:  suggestion,
				})
			}
		}

		id := msg.MessageID
		if id == 0 {
			id = i + 1
		}
		analyses = append(analyses, MessageAnalysis{
			MessageID:       id,
			ComplianceScore: scoreViolations(violations),
			Violations:      violations,
			RiskLevel:       riskLevelFor(violations),
		})
	}

	var overall float64
	if len(analyses) > 0 {
		var sum float64
		for _, analysis := range analyses {
			sum += analysis.ComplianceScore
		}
		overall = roundTo(sum/float64(len(analyses)), 1)
	}

	report := ComplianceReport{
		OverallCompliance: overall,
		MessageAnalyses:   analyses,
		Scenario:          in.Scenario,
		RuleSetApplied:    ruleSetFor(in.Scenario),
		AnalysisMethod:    "fallback_rule_based",
		Note:              "Used fallback analysis due to LLM parsing issues",
	}
	report.RiskMetrics = calculateRiskMetrics(report)

	return report
}

// ruleSetFor selects the rule set for a scenario.
func ruleSetFor(scenario string) string {
	switch {
	case strings.Contains(scenario, "insurance") || strings.Contains(scenario, "financial"):
		return "financial_services"
	case strings.Contains(scenario, "health"):
		return "healthcare"
	default:
		return "general"
	}
}

// scoreViolations computes the 0-100 compliance score with severity weights
// of 25/10/5.
func scoreViolations(violations []Violation) float64 {
	var high, medium, low int
	for _, v := range violations {
		switch v.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		case SeverityLow:
			low++
		}
	}
	return math.Max(0, float64(100-high*25-medium*10-low*5))
}

// riskLevelFor derives the per-message risk level from its violations.
func riskLevelFor(violations []Violation) string {
	hasMedium := false
	for _, v := range violations {
		switch v.Severity {
		case SeverityHigh:
			return SeverityHigh
		case SeverityMedium:
			hasMedium = true
		}
	}
	if hasMedium {
		return SeverityMedium
	}
	return SeverityLow
}

// calculateRiskMetrics aggregates per-message verdicts into an overall risk
// posture and deployment recommendation.
func calculateRiskMetrics(report ComplianceReport) RiskMetrics {
	if len(report.MessageAnalyses) == 0 {
		return RiskMetrics{OverallRisk: "UNKNOWN"}
	}

	metrics := RiskMetrics{AvgComplianceScore: report.OverallCompliance}
	for _, analysis := range report.MessageAnalyses {
		metrics.TotalViolations += len(analysis.Violations)
		switch analysis.RiskLevel {
		case SeverityHigh:
			metrics.HighRiskMessages++
		case SeverityMedium:
			metrics.MediumRiskMessages++
		default:
			metrics.LowRiskMessages++
		}
	}

	switch {
	case metrics.HighRiskMessages > 0 || metrics.AvgComplianceScore < 60:
		metrics.OverallRisk = SeverityHigh
	case metrics.MediumRiskMessages > 0 || metrics.AvgComplianceScore < 80:
		metrics.OverallRisk = SeverityMedium
	default:
		metrics.OverallRisk = SeverityLow
	}

	switch metrics.OverallRisk {
	case SeverityLow:
		metrics.DeploymentRecommendation = DeploymentApproved
	case SeverityMedium:
		metrics.DeploymentRecommendation = DeploymentReviewRequired
	default:
		metrics.DeploymentRecommendation = DeploymentNotApproved
	}

	return metrics
}

// contentForMessage finds a message's content by id.
func contentForMessage(messages []DraftMessage, id int) string {
	for _, msg := range messages {
		if msg.MessageID == id {
			return msg.Content
		}
	}
	return ""
}

// draftMessages resolves the message set to analyze: the drafting step's
// output when present, otherwise a caller-supplied "messages" field.
func draftMessages(in *Input) []DraftMessage {
	if data := in.PreviousData(KeyDrafting); data != nil {
		if report, ok := data.(DraftReport); ok {
			return report.Messages
		}
	}

	raw, ok := in.Fields["messages"]
	if !ok {
		return nil
	}
	var messages []DraftMessage
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &messages,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil
	}
	if err := decoder.Decode(raw); err != nil {
		return nil
	}
	return messages
}

// roundTo rounds to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
