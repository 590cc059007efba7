// Package notice shows a blocking message that must be dismissed before
// the learner can continue.
package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examcoach/internal/router"
	"github.com/abhisek/examcoach/internal/screen"
	"github.com/abhisek/examcoach/internal/ui/layout"
	"github.com/abhisek/examcoach/internal/ui/theme"
)

// NoticeScreen implements screen.Screen for a dismissable message.
type NoticeScreen struct {
	message string
}

var _ screen.Screen = (*NoticeScreen)(nil)
var _ screen.KeyHintProvider = (*NoticeScreen)(nil)

// New creates a notice showing message.
func New(message string) *NoticeScreen {
	return &NoticeScreen{message: message}
}

func (s *NoticeScreen) Init() tea.Cmd {
	return nil
}

func (s *NoticeScreen) Title() string {
	return "Notice"
}

// Message returns the text being shown.
func (s *NoticeScreen) Message() string {
	return s.message
}

func (s *NoticeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "OK"},
	}
}

func (s *NoticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "space":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *NoticeScreen) View(width, height int) string {
	boxWidth := width * 2 / 3
	if boxWidth < 30 {
		boxWidth = width
	}
	box := theme.Notice.Width(boxWidth).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			theme.Strong.Render(s.message),
			"",
			theme.Hint.Render("press enter to continue"),
		),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
