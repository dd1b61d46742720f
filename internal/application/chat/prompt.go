package chat

import (
	"fmt"
	"strings"
)

// maxAnalysisChars bounds the analysis JSON embedded in the chat context.
const maxAnalysisChars = 2500

const noContext = "The user has not provided specific document text or analysis results yet. " +
	"Answer generally or ask them to analyze first."

// SystemPrompt sets the assistant persona for the chat widget.
func SystemPrompt() string {
	return `You are a helpful AI assistant in the 'SentimentChain' app.
Use ONLY the provided context below. Do not hallucinate.`
}

// Context renders the context block: the text snippet and the analysis JSON
// (cut at 2500 characters), or a note that nothing was analysed yet.
func Context(text, analysisJSON string, hasContext bool) string {
	if !hasContext {
		return noContext
	}
	if r := []rune(analysisJSON); len(r) > maxAnalysisChars {
		analysisJSON = string(r[:maxAnalysisChars]) + "..."
	}
	var b strings.Builder
	b.WriteString("--- Original Text Snippet ---\n")
	b.WriteString(text)
	b.WriteString("\n\n--- Analysis Results ---\n")
	b.WriteString(analysisJSON)
	return b.String()
}

// UserPrompt wraps the context and the question.
func UserPrompt(text, analysisJSON string, hasContext bool, question string) string {
	return fmt.Sprintf("%s\n\nUser Question:\n%s\n\nAnswer:", Context(text, analysisJSON, hasContext), question)
}
