package generator

import "strings"

// DefaultSystemPrompt frames the model as a marketing strategist.
const DefaultSystemPrompt = "You are an AI marketing strategist designed to create comprehensive and effective " +
	"marketing campaign plans. Your role is to analyze the given campaign description and the " +
	"provided information, then develop a detailed strategy covering objectives, target " +
	"audience, channels, content, budget allocation and the KPIs used to measure success."

// BuildPrompt assembles the user message for a campaign description and
// its supporting passages.
func BuildPrompt(description string, passages []string) string {
	var b strings.Builder
	b.WriteString("Create a marketing campaign strategy for ")
	b.WriteString(description)
	b.WriteString(". Use the following information:\n")
	b.WriteString(strings.Join(passages, "\n\n"))
	b.WriteString("\n\nStrategy:")
	return b.String()
}
