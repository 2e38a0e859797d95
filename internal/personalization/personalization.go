// Package personalization maps survey answers to a personalized set of node
// types worth surfacing first in the editor.
package personalization

// Survey answer keys.
const (
	AnswerKeyCompanySize    = "companySize"
	AnswerKeyWorkArea       = "workArea"
	AnswerKeyAutomationGoal = "automationGoal"
	AnswerKeyCodingSkill    = "codingSkill"
)

// Work-area answer values.
const (
	WorkAreaFinance   = "finance"
	WorkAreaHR        = "hr"
	WorkAreaIT        = "it-engineering"
	WorkAreaMarketing = "sales-marketing"
	WorkAreaSecurity  = "security"
)

// nodeTypesByWorkArea maps a work area to the node types it usually needs.
var nodeTypesByWorkArea = map[string][]string{
	WorkAreaFinance: {
		"n8n-nodes-base.googleSheets",
		"n8n-nodes-base.quickbooks",
		"n8n-nodes-base.xero",
	},
	WorkAreaHR: {
		"n8n-nodes-base.bambooHr",
		"n8n-nodes-base.googleCalendar",
		"n8n-nodes-base.slack",
	},
	WorkAreaIT: {
		"n8n-nodes-base.github",
		"n8n-nodes-base.gitlab",
		"n8n-nodes-base.pagerDuty",
	},
	WorkAreaMarketing: {
		"n8n-nodes-base.hubspot",
		"n8n-nodes-base.mailchimp",
		"n8n-nodes-base.salesforce",
	},
	WorkAreaSecurity: {
		"n8n-nodes-base.theHive",
		"n8n-nodes-base.virusTotal",
	},
}

// codingNodeTypes are surfaced for users comfortable writing code.
var codingNodeTypes = []string{
	"n8n-nodes-base.code",
	"n8n-nodes-base.httpRequest",
}

// NodeTypes derives the personalized node-type list from a survey answers
// blob. It returns an empty list for nil or unrecognized answers.
func NodeTypes(answers map[string]any) []string {
	out := []string{}
	if len(answers) == 0 {
		return out
	}

	seen := make(map[string]struct{})
	add := func(types []string) {
		for _, nodeType := range types {
			if _, ok := seen[nodeType]; ok {
				continue
			}
			seen[nodeType] = struct{}{}
			out = append(out, nodeType)
		}
	}

	for _, area := range answerValues(answers[AnswerKeyWorkArea]) {
		add(nodeTypesByWorkArea[area])
	}
	for _, skill := range answerValues(answers[AnswerKeyCodingSkill]) {
		if skill == "proficient" || skill == "advanced" {
			add(codingNodeTypes)
		}
	}
	return out
}

// answerValues normalizes a survey answer into a string slice. Answers arrive
// as either a single string or a list, depending on the question type.
func answerValues(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
