package quiz

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examcoach/internal/feedback"
	"github.com/abhisek/examcoach/internal/markup"
	"github.com/abhisek/examcoach/internal/ui/components"
	"github.com/abhisek/examcoach/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	content, _ := s.page(width)
	chrome := s.chrome(width)

	vp := viewport.New(
		viewport.WithWidth(width),
		viewport.WithHeight(s.pageHeight(width, height)),
	)
	vp.SetContent(content)
	vp.SetYOffset(s.offset)

	return lipgloss.JoinVertical(lipgloss.Left, vp.View(), "", chrome)
}

// page renders the scrollable part of the screen and returns the line
// each landmark starts on.
func (s *QuizScreen) page(width int) (string, map[feedback.Landmark]int) {
	marks := map[feedback.Landmark]int{feedback.LandmarkTop: 0}
	var lines []string
	add := func(block string) {
		lines = append(lines, strings.Split(block, "\n")...)
	}

	if !s.question.Loaded() {
		add(theme.Hint.Render("Loading question..."))
	} else {
		rec := s.question.Record()
		if rec.HasInsert() {
			add(theme.Heading.Render("Insert"))
			add(markup.Render(*rec.InsertText, width))
			add("")
		}
		add(theme.Heading.Render("Question"))
		add(markup.Render(rec.QuestionText, width))
		add(theme.Strong.Render(fmt.Sprintf("[%d marks]", rec.Marks)))
	}

	marks[feedback.LandmarkSummary] = len(lines)
	if r := s.feedback.Flash(); r != nil {
		add("")
		marks[feedback.LandmarkSummary] = len(lines)
		add(theme.Title.Render("Summary"))
		add(renderResult(r, width))
	}

	marks[feedback.LandmarkDetail] = len(lines)
	if r := s.feedback.Pro(); r != nil {
		add("")
		marks[feedback.LandmarkDetail] = len(lines)
		add(theme.Title.Render("Detailed feedback"))
		add(renderResult(r, width))
	}

	if err := s.feedback.Err(); err != nil {
		add("")
		add(theme.ErrorText.Width(width).Render("Could not get feedback: " + err.Error()))
	}

	return strings.Join(lines, "\n"), marks
}

func renderResult(r *feedback.Result, width int) string {
	if r.IsError {
		return markup.Render(markup.ErrorHTML(r.Text), width)
	}
	return markup.Render(r.Text, width)
}

// chrome renders the fixed rows below the page.
func (s *QuizScreen) chrome(width int) string {
	var rows []string
	if s.bar.Visible() {
		rows = append(rows, s.bar.View(width), "")
	}
	rows = append(rows, s.input.View())
	if s.controlsShown() {
		rows = append(rows, "", s.controls())
	}
	return strings.Join(rows, "\n")
}

func (s *QuizScreen) controls() string {
	var buttons []components.Button
	if s.buttons.PreviousVisible {
		buttons = append(buttons, components.NewButton("◀ Previous", "ctrl+p", true))
	}
	buttons = append(buttons, components.NewButton("Try again", "ctrl+r", false))
	if s.buttons.NextVisible {
		buttons = append(buttons, components.NewButton("Next ▶", "ctrl+n", true))
	}
	return components.ButtonRow(buttons...)
}

// pageHeight is the number of page lines visible above the chrome.
func (s *QuizScreen) pageHeight(width, height int) int {
	return max(1, height-lineCount(s.chrome(width))-1)
}

func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}
