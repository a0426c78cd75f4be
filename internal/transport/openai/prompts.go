package openai

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = `You summarize documents. Respond with a single JSON object and nothing else:
{"short": "<2-3 sentence summary>", "bullets": ["<key point>", ...]}
Use at most 5 bullets. Do not wrap the JSON in markdown.`

const classifySystemPromptFmt = `You classify documents. Respond with a single JSON object and nothing else:
{"category": "<one of the allowed categories>", "tags": ["<keyword>", ...]}
Allowed categories: %s.
Use 3-8 lowercase keyword tags. Do not wrap the JSON in markdown.`

func classifySystemPrompt(categories []string) string {
	return fmt.Sprintf(classifySystemPromptFmt, strings.Join(categories, ", "))
}

func summaryUserPrompt(text string) string {
	return "Summarize the following document:\n\n" + text
}

func classifyUserPrompt(text string) string {
	return "Classify the following document:\n\n" + text
}
