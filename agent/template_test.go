package agent

import (
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]any
		want     string
	}{
		{
			name:     "simple substitution",
			template: "SCENARIO: {scenario_context}",
			vars:     map[string]any{"scenario_context": "insurance_renewal"},
			want:     "SCENARIO: insurance_renewal",
		},
		{
			name:     "missing slot renders N/A",
			template: "AUDIENCE: {audience}",
			vars:     map[string]any{},
			want:     "AUDIENCE: N/A",
		},
		{
			name:     "non-string value",
			template: "COUNT: {num_messages}",
			vars:     map[string]any{"num_messages": 5},
			want:     "COUNT: 5",
		},
		{
			name:     "json example braces untouched",
			template: `[{"message_id": 1, "content": "x"}]`,
			vars:     map[string]any{},
			want:     `[{"message_id": 1, "content": "x"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.template, tt.vars); got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplateFullProfile(t *testing.T) {
	// The built-in drafting template must render without leftover slots for
	// identifier-style placeholders.
	rendered := RenderTemplate(
		"CONTEXT: {scenario_context}\nAUDIENCE: {audience}\nINSTRUCTIONS:\n{adaptation_instructions}",
		map[string]any{"scenario_context": "loan_reminder", "audience": "borrowers"},
	)
	if strings.Contains(rendered, "{scenario_context}") || strings.Contains(rendered, "{audience}") {
		t.Errorf("unresolved slots in %q", rendered)
	}
	if !strings.Contains(rendered, "N/A") {
		t.Error("expected missing adaptation_instructions to render as N/A")
	}
}
