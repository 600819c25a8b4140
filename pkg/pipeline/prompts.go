package pipeline

import (
	"fmt"
	"strings"

	"github.com/delphi-social/server/pkg/posts"
)

// buildAnalysisPrompt asks the model to explain what the triggering post
// wants, given the thread so far. The line for the triggering post itself is
// dropped from the context block since the post is quoted right below it.
func buildAnalysisPrompt(post posts.Post, threadCtx posts.ThreadContext) string {
	var b strings.Builder
	b.WriteString("Analyze this tweet interaction and explain what the user is asking for.\n\n")

	currentLine := fmt.Sprintf("@%s: %s", post.Author, post.Text)
	contextLines := []string{}
	for _, line := range threadCtx.Lines {
		if line == currentLine {
			continue
		}
		contextLines = append(contextLines, line)
	}
	if len(contextLines) > 0 {
		b.WriteString("Thread context:\n")
		for _, line := range contextLines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nCurrent tweet from @%s: %s\n", post.Author, post.Text)
	b.WriteString("\nProvide a clear explanation of what the user is requesting.")
	return b.String()
}

func buildFinalPrompt(author string, analysis string) string {
	return fmt.Sprintf(`Context: You are responding on Twitter to @%s.

Analysis of request: %s

Your task: Provide a helpful response that:
1. Starts with @%s
2. Is informative while being concise
3. Directly addresses the analyzed request`, author, analysis, author)
}

func responseSystemPrompt(botName string) string {
	return fmt.Sprintf("You are %s, an AI assistant focused on product, growth, and business advice. "+
		"Always start your response by addressing the user with @username format using their author name. "+
		"Your responses should be informative while being concise and tweet-length.", botName)
}
