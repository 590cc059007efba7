package api

import (
	"fmt"
	"strings"

	"github.com/abhisek/examcoach/internal/store"
)

// renderQuestion builds the question markup shown to learners and sent to
// the marker: the insert text, a blank line, the question, then the marks.
func renderQuestion(q store.Question) string {
	full := q.Text
	if q.InsertText != nil && *q.InsertText != "" {
		full = *q.InsertText + "\n\n" + q.Text
	}
	full += fmt.Sprintf("<br><strong>[%d marks]</strong>", q.Marks)
	return strings.ReplaceAll(full, "\n", "<br>")
}

func newQuestionResponse(bank []store.Question, number int) questionResponse {
	q := bank[number]
	return questionResponse{
		Success:      true,
		Question:     renderQuestion(q),
		QuestionText: q.Text,
		InsertText:   q.InsertText,
		Marks:        q.Marks,
		Number:       number,
		Total:        len(bank),
	}
}
