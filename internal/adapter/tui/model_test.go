package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
	"todoclient/pkg/test"
	"todoclient/pkg/test/factory"
)

const userID = 3

type ModelSuite struct {
	suite.Suite
	Remote  *test.FakeRemote
	Session *service.Session
	Model   Model
	Todos   []domain.Todo
}

func (s *ModelSuite) SetupTest() {
	s.Todos = []domain.Todo{
		factory.Todo(userID, true, map[string]any{"Title": "done already"}),
		factory.Todo(userID, false, map[string]any{"Title": "walk dog"}),
	}
	s.Remote = test.NewFakeRemote(userID, s.Todos...)
	s.Session = service.NewSession(s.Remote, service.SessionOptions{UserID: userID, NotificationTTL: time.Minute})
	s.Model = New(context.Background(), s.Session)

	s.run(s.Model.loadCmd())
}

func TestModelSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(ModelSuite))
}

// run executes cmd synchronously and feeds its message back into the model.
func (s *ModelSuite) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	s.send(msg)
}

func (s *ModelSuite) send(msg tea.Msg) tea.Cmd {
	next, cmd := s.Model.Update(msg)
	s.Model = next.(Model)
	return cmd
}

func (s *ModelSuite) press(k string) {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	s.run(s.send(msg))
}

func (s *ModelSuite) typeText(text string) {
	for _, r := range text {
		s.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (s *ModelSuite) TestLoadRendersRows() {
	Expect(s.Model.view.Rows).To(HaveLen(2))

	out := s.Model.View()
	Expect(out).To(ContainSubstring("walk dog"))
	Expect(out).To(ContainSubstring("1 items left"))
}

func (s *ModelSuite) TestAddClearsInputOnSuccess() {
	s.typeText("  buy milk ")
	s.press("enter")

	Expect(s.Model.input.Value()).To(Equal(""))
	Expect(s.Model.view.Rows).To(HaveLen(3))
	Expect(s.Model.view.Rows[2].Title()).To(Equal("buy milk"))
}

func (s *ModelSuite) TestAddKeepsInputOnFailure() {
	s.Remote.FailOn(test.OpCreate, 0)

	s.typeText("buy milk")
	s.press("enter")

	Expect(s.Model.input.Value()).To(Equal("buy milk"))
	Expect(s.Model.view.Notice).NotTo(BeNil())
	Expect(s.Model.View()).To(ContainSubstring("Unable to add a todo"))
}

func (s *ModelSuite) TestBlankAddShowsValidation() {
	s.typeText("   ")
	s.press("enter")

	Expect(s.Remote.Calls(test.OpCreate)).To(BeEmpty())
	Expect(s.Model.view.Notice.Message).To(Equal("Title should not be empty"))

	s.press("esc")
	Expect(s.Model.view.Notice).To(BeNil())
}

func (s *ModelSuite) TestToggleAndFilter() {
	s.press("tab")
	s.press("down")
	s.press(" ")

	Expect(s.Model.view.CompletedCount).To(Equal(2))

	s.press("2")
	Expect(s.Model.view.Status).To(Equal(domain.StatusActive))
	Expect(s.Model.view.ListVisible).To(BeFalse())
	Expect(s.Model.view.FooterVisible).To(BeTrue())
}

func (s *ModelSuite) TestEditCommit() {
	s.press("tab")
	s.press("down")
	s.press("e")

	Expect(s.Model.focus).To(Equal(focusEdit))
	Expect(s.Model.edit.Value()).To(Equal("walk dog"))

	s.typeText(" twice")
	Expect(s.Session.Editor().State(s.Todos[1].ID).Draft).To(Equal("walk dog twice"))

	s.press("enter")

	Expect(s.Model.focus).To(Equal(focusList))
	got, _ := s.Session.Store().Get(s.Todos[1].ID)
	Expect(got.Title).To(Equal("walk dog twice"))
}

func (s *ModelSuite) TestEditFailureStaysInEditMode() {
	s.Remote.FailOn(test.OpUpdate, s.Todos[1].ID)

	s.press("tab")
	s.press("down")
	s.press("e")
	s.typeText("!")
	s.press("enter")

	Expect(s.Model.focus).To(Equal(focusEdit))
	Expect(s.Model.edit.Value()).To(Equal("walk dog!"))
	Expect(s.Model.view.Notice.Message).To(Equal("Unable to update a todo"))
}

func (s *ModelSuite) TestEditCancel() {
	s.press("tab")
	s.press("e")
	s.typeText("zzz")
	s.press("esc")

	Expect(s.Model.focus).To(Equal(focusList))
	Expect(s.Remote.Calls(test.OpUpdate)).To(BeEmpty())
	Expect(s.Session.Editor().State(s.Todos[0].ID).IsEditing()).To(BeFalse())
}

func (s *ModelSuite) TestClearCompleted() {
	s.press("tab")
	s.press("c")

	Expect(s.Model.view.Total).To(Equal(1))
	Expect(s.Model.view.ClearCompletedEnabled).To(BeFalse())
}

func (s *ModelSuite) TestToggleAll() {
	s.press("tab")
	s.press("a")

	Expect(s.Model.view.AllCompleted).To(BeTrue())
	Expect(s.Remote.Calls(test.OpUpdate)).To(HaveLen(1))
}

func (s *ModelSuite) TestGuidanceWithoutUser() {
	session := service.NewSession(test.NewFakeRemote(0), service.SessionOptions{})
	m := New(context.Background(), session)

	Expect(m.Init()).To(BeNil())
	Expect(m.View()).To(ContainSubstring("No user id is configured"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	Expect(cmd).NotTo(BeNil())
}
