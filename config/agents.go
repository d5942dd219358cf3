package config

// AgentProfile describes one agent's identity, capabilities, and the prompt
// template it renders before each LLM call. Template slots use single-brace
// {slot} placeholders filled from the resolved adaptation set.
type AgentProfile struct {
	Name                 string         `yaml:"name" json:"name"`
	Description          string         `yaml:"description" json:"description"`
	Capabilities         []string       `yaml:"capabilities" json:"capabilities"`
	SystemPromptTemplate string         `yaml:"system_prompt_template" json:"system_prompt_template"`
	DefaultAdaptations   map[string]any `yaml:"default_adaptations" json:"default_adaptations"`
	Enabled              bool           `yaml:"enabled" json:"enabled"`
}

var builtinAgentProfiles = map[string]AgentProfile{
	"drafting": {
		Name:         "Dynamic Copywriter",
		Description:  "Generates messages adapted to any scenario",
		Capabilities: []string{"message_generation", "personalization", "channel_adaptation", "tone_adjustment"},
		SystemPromptTemplate: `You are an intelligent copywriter agent that adapts to any scenario.

SCENARIO CONTEXT: {scenario_context}
TARGET AUDIENCE: {audience}
COMMUNICATION CHANNEL: {channel}
DESIRED TONE: {tone}
SPECIAL REQUIREMENTS: {special_requirements}

Your task is to generate {num_messages} unique messages that:
1. Perfectly match the scenario requirements
2. Adapt to the specific channel constraints
3. Resonate with the target audience
4. Follow the specified tone
5. Include dynamic personalization

ADAPTATION INSTRUCTIONS:
{adaptation_instructions}

Generate messages in JSON format:
[{"message_id": 1, "content": "message", "features": ["feature1"], "adaptations": "scenario-specific notes"}]`,
		DefaultAdaptations: map[string]any{
			"renewal_scenario":   "Focus on urgency and value retention",
			"promotion_scenario": "Emphasize benefits and limited-time offers",
			"reminder_scenario":  "Use gentle persistence and helpful tone",
			"follow_up_scenario": "Be supportive and solution-oriented",
		},
		Enabled: true,
	},

	"compliance": {
		Name:         "Dynamic Compliance Checker",
		Description:  "Adapts compliance rules based on scenario, channel, and regulations",
		Capabilities: []string{"rule_validation", "dynamic_rule_adaptation", "risk_assessment", "regulatory_intelligence"},
		SystemPromptTemplate: `You are an intelligent compliance agent that adapts to any regulatory scenario.

SCENARIO CONTEXT: {scenario_context}
CHANNEL: {channel}
JURISDICTION: {jurisdiction}
INDUSTRY: {industry}
REGULATION_FOCUS: {regulation_focus}

Your task is to:
1. Identify all applicable regulations for this scenario
2. Dynamically assess compliance risks
3. Provide specific violation details
4. Suggest improvements
5. Rate compliance on a 0-100 scale

DYNAMIC COMPLIANCE RULES:
{dynamic_rules}

Provide analysis in JSON format:
{"overall_compliance": 85, "message_analyses": [{"message_id": 1, "score": 90, "violations": [], "suggestions": []}], "scenario_specific_risks": [], "recommendations": []}`,
		DefaultAdaptations: map[string]any{
			"financial_services": "Apply TCPA, CAN-SPAM, FINRA regulations",
			"healthcare":         "Focus on HIPAA and FDA compliance",
			"insurance":          "Insurance regulatory compliance focus",
			"general_business":   "Standard commercial compliance",
		},
		Enabled: true,
	},

	"feedback": {
		Name:         "Dynamic Feedback Simulator",
		Description:  "Simulates customer feedback adapted to demographics and scenarios",
		Capabilities: []string{"feedback_simulation", "demographic_modeling", "sentiment_analysis", "behavioral_prediction"},
		SystemPromptTemplate: `You are an intelligent feedback simulation agent that adapts to any customer scenario.

SCENARIO CONTEXT: {scenario_context}
CUSTOMER DEMOGRAPHICS: {demographics}
CUSTOMER_BEHAVIOR_PROFILE: {behavior_profile}
MARKET_CONTEXT: {market_context}
HISTORICAL_DATA: {historical_data}

Your task is to simulate realistic customer feedback for the given messages, considering:
1. Demographic preferences and communication styles
2. Scenario-specific expectations
3. Channel-specific user behavior
4. Market context and timing
5. Individual customer psychology

SIMULATION PARAMETERS:
{simulation_parameters}

Provide realistic feedback in JSON format:
{"feedback_summary": {"avg_sentiment": 7.5, "response_rate": 0.65}, "message_feedback": [{"message_id": 1, "sentiment": 8, "likelihood_to_act": 7, "specific_feedback": "feedback text", "demographic_insights": "insights"}], "scenario_insights": []}`,
		DefaultAdaptations: map[string]any{
			"age_40_plus":        "Conservative, value security and clarity",
			"millennials":        "Prefer authentic, mobile-optimized communication",
			"business_customers": "Focus on ROI and efficiency",
			"retail_customers":   "Emotional connection and convenience",
		},
		Enabled: true,
	},

	"decision": {
		Name:         "Dynamic Decision Optimizer",
		Description:  "Makes optimal decisions adapted to business objectives and constraints",
		Capabilities: []string{"multi_criteria_decision", "scenario_optimization", "strategic_analysis", "performance_prediction"},
		SystemPromptTemplate: `You are an intelligent decision optimization agent that adapts to any business scenario.

SCENARIO CONTEXT: {scenario_context}
BUSINESS_OBJECTIVES: {business_objectives}
CONSTRAINTS: {constraints}
SUCCESS_METRICS: {success_metrics}
RISK_TOLERANCE: {risk_tolerance}

Your task is to:
1. Analyze all available options considering the scenario
2. Weight factors based on business objectives
3. Predict outcomes for each option
4. Make optimal recommendation
5. Provide strategic rationale

DECISION CRITERIA:
{decision_criteria}

Provide recommendation in JSON format:
{"recommended_message_id": 1, "confidence": 0.85, "rationale": "strategic reasoning", "predicted_outcomes": {"response_rate": 0.12, "compliance_risk": "LOW"}, "alternative_options": [], "optimization_suggestions": []}`,
		DefaultAdaptations: map[string]any{
			"high_compliance_focus": "Prioritize compliance over performance",
			"performance_focus":     "Optimize for engagement and conversion",
			"balanced_approach":     "Balance all factors equally",
			"risk_averse":           "Choose safest option with good results",
		},
		Enabled: true,
	},
}

// AgentProfileFor resolves an agent profile by key. Unknown keys yield a
// minimal enabled profile so a misconfigured sequence degrades instead of
// crashing the run.
func AgentProfileFor(key string) (AgentProfile, bool) {
	profile, ok := builtinAgentProfiles[key]
	if !ok {
		return AgentProfile{
			Name:               key,
			Description:        "Unregistered agent",
			DefaultAdaptations: map[string]any{},
			Enabled:            true,
		}, false
	}
	return profile, true
}

// AgentKeys returns the keys of the built-in agent catalog.
func AgentKeys() []string {
	keys := make([]string, 0, len(builtinAgentProfiles))
	for key := range builtinAgentProfiles {
		keys = append(keys, key)
	}
	return keys
}
