package marking

import (
	"fmt"
	"strings"
)

// Item is the question being marked, as shown to the learner.
type Item struct {
	// Question is the rendered question markup, insert and marks included.
	Question   string
	InsertText string
	Marks      int
	MarkScheme string
}

func buildFlashPrompt(item Item) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Question: %s\n", item.Question))
	b.WriteString(fmt.Sprintf("Mark scheme: %s\n", item.MarkScheme))
	b.WriteString("Write a short and concise summary (Don't narrate your response).")

	return b.String()
}

func buildProPrompt(item Item, answer string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Insert text: %s\n", item.InsertText))
	b.WriteString(fmt.Sprintf("Question: %s\n", item.Question))
	b.WriteString(fmt.Sprintf("Marks available: %d\n", item.Marks))
	b.WriteString(fmt.Sprintf("Student's answer: %s\n", answer))
	b.WriteString(fmt.Sprintf("Mark scheme: %s\n", item.MarkScheme))
	b.WriteString("I am the student now mark my answer and give clear and detailed feedback on it.")

	return b.String()
}
