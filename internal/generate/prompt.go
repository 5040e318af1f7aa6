package generate

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write study quizzes in a plain-text markup. Every question you write must be factually correct and have exactly one defensible answer key.`

const markupGuide = `Markup rules:
- Each question starts with "N. " followed by the prompt. Add [tf] for true/false, [match] for matching, [order] for ordering.
- Multiple choice options are "A. text", "B. text", ... Mark every correct option with a trailing " *".
- True/false: after the header write "True *" or "False *" on its own line.
- Matching: options are "A. left => right" pairs, written in the correct pairing.
- Ordering: items are "1) first", "2) second", ... numbered by their correct position.
- Optional lines after the options: "[explanation: why the answer is right]".
- Optional code before the options: "[code:language]" then the code then "[/code]".
- Separate questions with a blank line.`

func buildUserMessage(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)
	if req.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	}
	if len(req.Types) > 0 {
		names := make([]string, len(req.Types))
		for i, t := range req.Types {
			names[i] = string(t)
		}
		fmt.Fprintf(&b, "Question types to use: %s\n", strings.Join(names, ", "))
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "\nSource notes:\n%s\n", req.Notes)
	}

	b.WriteString("\n")
	b.WriteString(markupGuide)
	b.WriteString(`

Instructions:
Write the quiz. Give every question an explanation line. Vary which option is correct.`)

	return b.String()
}

// buildRetryMessage asks the model to fix a draft that failed validation.
func buildRetryMessage(markup string, problem error) string {
	var b strings.Builder

	b.WriteString("Your previous markup could not be used.\n")
	fmt.Fprintf(&b, "Problem: %s\n", problem)
	fmt.Fprintf(&b, "\nPrevious markup:\n%s\n", markup)
	b.WriteString("\nReturn the whole quiz again with the problem fixed.")
	return b.String()
}
