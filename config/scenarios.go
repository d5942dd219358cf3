package config

// ScenarioProfile identifies a business scenario and the per-agent
// adaptation overrides it carries. Profiles are immutable after load.
type ScenarioProfile struct {
	Name             string                    `yaml:"name" json:"name"`
	Description      string                    `yaml:"description" json:"description"`
	AgentAdaptations map[string]map[string]any `yaml:"agent_adaptations" json:"agent_adaptations"`
}

// builtinScenarios is the scenario catalog shipped with the engine. User
// config may add to or override it.
var builtinScenarios = map[string]ScenarioProfile{
	"insurance_renewal": {
		Name:        "Insurance Policy Renewal",
		Description: "Insurance policy renewal campaign for existing policy holders",
		AgentAdaptations: map[string]map[string]any{
			"drafting": {
				"focus":                 "Trust, security, value proposition",
				"tone_adjustment":       "Professional yet warm",
				"personalization_level": "high",
			},
			"compliance": {
				"primary_regulations":  []string{"TCPA", "FINRA", "State Insurance Regulations"},
				"risk_threshold":       "low",
				"special_requirements": []string{"opt_out_language", "clear_identification"},
			},
			"feedback": {
				"demographic_model": "conservative_investors",
				"response_patterns": "security_focused",
				"decision_factors":  []string{"trust", "clarity", "value"},
			},
			"decision": {
				"optimization_priority": "compliance_first",
				"success_weight":        map[string]any{"compliance": 0.4, "engagement": 0.3, "conversion": 0.3},
			},
		},
	},

	"healthcare_reminder": {
		Name:        "Healthcare Appointment Reminder",
		Description: "Appointment and treatment reminders for patients",
		AgentAdaptations: map[string]map[string]any{
			"drafting": {
				"focus":                 "Health importance, convenience, care",
				"tone_adjustment":       "Caring and supportive",
				"personalization_level": "medium",
			},
			"compliance": {
				"primary_regulations":  []string{"HIPAA", "HITECH"},
				"risk_threshold":       "very_low",
				"special_requirements": []string{"phi_protection", "secure_messaging"},
			},
			"feedback": {
				"demographic_model": "health_conscious",
				"response_patterns": "appointment_focused",
				"decision_factors":  []string{"convenience", "health_importance", "trust"},
			},
			"decision": {
				"optimization_priority": "patient_care",
				"success_weight":        map[string]any{"compliance": 0.5, "patient_satisfaction": 0.3, "attendance": 0.2},
			},
		},
	},

	"loan_reminder": {
		Name:        "Loan Payment Reminder",
		Description: "Payment reminders for borrowers with outstanding loans",
		AgentAdaptations: map[string]map[string]any{
			"drafting": {
				"focus":                 "Clarity, respect, payment convenience",
				"tone_adjustment":       "Respectful and direct",
				"personalization_level": "medium",
			},
			"compliance": {
				"primary_regulations":  []string{"FDCPA", "TCPA", "State Lending Laws"},
				"risk_threshold":       "low",
				"special_requirements": []string{"creditor_identification", "no_harassment"},
			},
			"feedback": {
				"demographic_model": "budget_conscious",
				"response_patterns": "payment_focused",
				"decision_factors":  []string{"clarity", "convenience", "trust"},
			},
			"decision": {
				"optimization_priority": "compliance_first",
				"success_weight":        map[string]any{"compliance": 0.45, "payment_completion": 0.35, "retention": 0.2},
			},
		},
	},

	"ecommerce_promotion": {
		Name:        "E-commerce Promotional Campaign",
		Description: "Promotional campaigns for online retail customers",
		AgentAdaptations: map[string]map[string]any{
			"drafting": {
				"focus":                 "Value, urgency, benefits",
				"tone_adjustment":       "Energetic and persuasive",
				"personalization_level": "high",
			},
			"compliance": {
				"primary_regulations":  []string{"CAN-SPAM", "GDPR", "CCPA"},
				"risk_threshold":       "medium",
				"special_requirements": []string{"unsubscribe_link", "sender_identification"},
			},
			"feedback": {
				"demographic_model": "online_shoppers",
				"response_patterns": "deal_focused",
				"decision_factors":  []string{"value", "urgency", "trust"},
			},
			"decision": {
				"optimization_priority": "conversion",
				"success_weight":        map[string]any{"conversion": 0.4, "engagement": 0.3, "compliance": 0.3},
			},
		},
	},
}

// ScenarioFor resolves a scenario profile by name. Unknown scenarios resolve
// to an empty profile rather than an error so callers never fail hard on a
// missing catalog entry.
func ScenarioFor(name string) (ScenarioProfile, bool) {
	profile, ok := builtinScenarios[name]
	if !ok {
		return ScenarioProfile{Name: name}, false
	}
	return profile, true
}

// ScenarioAdaptations returns the scenario's override set for one agent key.
// Unknown scenarios or agents yield an empty set.
func ScenarioAdaptations(scenario, agentKey string) map[string]any {
	profile, ok := builtinScenarios[scenario]
	if !ok {
		return map[string]any{}
	}
	overrides, ok := profile.AgentAdaptations[agentKey]
	if !ok {
		return map[string]any{}
	}
	return overrides
}

// ScenarioNames returns the catalog's scenario keys.
func ScenarioNames() []string {
	names := make([]string, 0, len(builtinScenarios))
	for name := range builtinScenarios {
		names = append(names, name)
	}
	return names
}
