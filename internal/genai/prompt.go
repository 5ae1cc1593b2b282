package genai

import "fmt"

// BuildPrompt wraps the user query in the fixed labeling instruction. The
// model is told to reply with bare JSON so the reply can be schema-checked
// and cached as-is.
func BuildPrompt(query string) string {
	return fmt.Sprintf(promptTemplate, query)
}

const promptTemplate = `You label short text queries with a single emoji.

Rules:
- If the query is not in English, translate it to English first.
- Choose the one emoji that best captures the query.
- Reply with JSON only, exactly of the form {"output": "<emoji>"} with no other text.

Query: %s`
