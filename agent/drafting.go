package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/campana-ai/campana/audit"
	"github.com/campana-ai/campana/utils"
)

// ============================================================================
// DRAFTING AGENT
// ============================================================================

// KeyDrafting identifies the message drafting step.
const KeyDrafting = "drafting"

// DraftMessage is one generated message candidate.
type DraftMessage struct {
	MessageID         int      `json:"message_id" mapstructure:"message_id"`
	Content           string   `json:"content" mapstructure:"content"`
	Features          []string `json:"features" mapstructure:"features"`
	ChannelOptimized  bool     `json:"channel_optimized,omitempty" mapstructure:"channel_optimized"`
	ScenarioAlignment string   `json:"scenario_alignment" mapstructure:"scenario_alignment"`
	Adaptations       string   `json:"adaptations,omitempty" mapstructure:"adaptations"`

	// Derived during post-processing.
	WordCount        int `json:"word_count"`
	CharacterCount   int `json:"character_count"`
	PlaceholderCount int `json:"placeholder_count"`
}

// GenerationSummary aggregates the produced message set.
type GenerationSummary struct {
	AvgWordCount      float64 `json:"avg_word_count"`
	AvgCharacterCount float64 `json:"avg_character_count"`
	PlaceholderUsage  int     `json:"placeholder_usage"`
	Note              string  `json:"note,omitempty"`
}

// DraftReport is the drafting agent's data payload.
type DraftReport struct {
	Messages          []DraftMessage    `json:"messages"`
	TotalGenerated    int               `json:"total_generated"`
	Scenario          string            `json:"scenario"`
	ParsingMethod     string            `json:"parsing_method,omitempty"`
	GenerationSummary GenerationSummary `json:"generation_summary"`
}

// DraftingAgent generates scenario-adapted message candidates.
type DraftingAgent struct {
	*BaseAgent
}

// NewDraftingAgent creates the drafting agent.
func NewDraftingAgent(gateway Gateway, audits *audit.Store) *DraftingAgent {
	agent := &DraftingAgent{}
	agent.BaseAgent = newBaseAgent(KeyDrafting, gateway, audits, agent)
	return agent
}

func (a *DraftingAgent) buildUserPrompt(in *Input, adaptations map[string]any) string {
	audience := stringField(in.Fields, "audience", "general audience")
	channel := stringField(in.Fields, "channel", "email")
	tone := stringField(in.Fields, "tone", "professional")
	placeholders := mapField(in.Fields, "placeholders")
	numMessages := intField(in.Fields, "num_messages", 5)

	var b strings.Builder
	fmt.Fprintf(&b, "SCENARIO: %s\n", in.Scenario)
	fmt.Fprintf(&b, "TASK: Generate %d unique messages for %s via %s\n", numMessages, audience, channel)
	fmt.Fprintf(&b, "TONE: %s\n\n", tone)
	b.WriteString("SCENARIO-SPECIFIC REQUIREMENTS:\n")

	switch in.Scenario {
	case "insurance_renewal":
		b.WriteString("- Emphasize policy benefits and protection\n")
		b.WriteString("- Create urgency around renewal deadline\n")
		b.WriteString("- Build trust and reliability\n")
		b.WriteString("- Include clear next steps\n")
	case "healthcare_reminder":
		b.WriteString("- Focus on health importance\n")
		b.WriteString("- Be supportive and caring\n")
		b.WriteString("- Make scheduling convenient\n")
		b.WriteString("- Respect patient privacy\n")
	case "ecommerce_promotion":
		b.WriteString("- Highlight value and savings\n")
		b.WriteString("- Create urgency with limited time\n")
		b.WriteString("- Showcase product benefits\n")
		b.WriteString("- Include clear call-to-action\n")
	default:
		b.WriteString("- Match the scenario context and audience expectations\n")
	}

	if len(placeholders) > 0 {
		if data, err := json.MarshalIndent(placeholders, "", "  "); err == nil {
			b.WriteString("\nAVAILABLE PLACEHOLDERS:\n")
			b.Write(data)
			b.WriteString("\n")
		}
	}

	if instructions := stringValue(adaptations["adaptation_instructions"]); instructions != "" {
		b.WriteString("\nADAPTATION INSTRUCTIONS:\n")
		b.WriteString(instructions)
		b.WriteString("\n")
	}

	b.WriteString("\nIMPORTANT: Return ONLY a valid JSON array of messages in this exact format:\n")
	b.WriteString(`[{"message_id": 1, "content": "message text with {placeholders}", "features": ["feature1", "feature2"], "channel_optimized": true, "scenario_alignment": "explanation"}]`)

	return b.String()
}

func (a *DraftingAgent) processResponse(content string, in *Input, adaptations map[string]any) any {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(utils.ExtractJSON(content)), &raw); err != nil {
		return a.fallbackParse(content, in)
	}

	placeholders := mapField(in.Fields, "placeholders")

	messages := make([]DraftMessage, 0, len(raw))
	for i, entry := range raw {
		var msg DraftMessage
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &msg,
			WeaklyTypedInput: true,
		})
		if err == nil {
			_ = decoder.Decode(entry)
		}

		if msg.MessageID == 0 {
			msg.MessageID = i + 1
		}
		if msg.Features == nil {
			msg.Features = []string{}
		}
		if msg.ScenarioAlignment == "" {
			msg.ScenarioAlignment = "Generated for " + in.Scenario
		}
		enrichMessage(&msg, placeholders)

		messages = append(messages, msg)
	}

	return buildDraftReport(messages, in.Scenario, "json")
}

// fallbackParse extracts message candidates from a non-JSON reply by grouping
// lines around message/option cues, padding to a minimum of three messages.
func (a *DraftingAgent) fallbackParse(content string, in *Input) DraftReport {
	placeholders := mapField(in.Fields, "placeholders")

	var messages []DraftMessage
	var current strings.Builder
	messageID := 1

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text == "" {
			return
		}
		msg := DraftMessage{
			MessageID:         len(messages) + 1,
			Content:           text,
			Features:          []string{"fallback_parsed"},
			ScenarioAlignment: fmt.Sprintf("Fallback parsed for %s", in.Scenario),
		}
		enrichMessage(&msg, placeholders)
		messages = append(messages, msg)
		current.Reset()
	}

	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "message") || strings.Contains(lower, "option") || strings.Contains(lower, fmt.Sprint(messageID)) {
			flush()
			messageID++
		} else {
			current.WriteString(line)
			current.WriteString(" ")
		}
	}
	flush()

	for len(messages) < 3 {
		msg := DraftMessage{
			MessageID:         len(messages) + 1,
			Content:           fmt.Sprintf("Generated message %d for %s", len(messages)+1, in.Scenario),
			Features:          []string{"auto_generated"},
			ScenarioAlignment: fmt.Sprintf("Auto-generated for %s", in.Scenario),
		}
		enrichMessage(&msg, placeholders)
		messages = append(messages, msg)
	}

	report := buildDraftReport(messages, in.Scenario, "fallback")
	report.GenerationSummary.Note = "Used fallback parsing due to non-JSON response"
	return report
}

// enrichMessage computes the derived word, character, and placeholder counts.
func enrichMessage(msg *DraftMessage, placeholders map[string]any) {
	msg.WordCount = len(strings.Fields(msg.Content))
	msg.CharacterCount = len(msg.Content)
	msg.PlaceholderCount = 0
	for name := range placeholders {
		if strings.Contains(msg.Content, "{"+name+"}") {
			msg.PlaceholderCount++
		}
	}
}

func buildDraftReport(messages []DraftMessage, scenario, method string) DraftReport {
	report := DraftReport{
		Messages:       messages,
		TotalGenerated: len(messages),
		Scenario:       scenario,
		ParsingMethod:  method,
	}
	if len(messages) == 0 {
		return report
	}

	var words, chars, placeholders int
	for _, msg := range messages {
		words += msg.WordCount
		chars += msg.CharacterCount
		placeholders += msg.PlaceholderCount
	}
	report.GenerationSummary = GenerationSummary{
		AvgWordCount:      float64(words) / float64(len(messages)),
		AvgCharacterCount: float64(chars) / float64(len(messages)),
		PlaceholderUsage:  placeholders,
	}
	return report
}
