package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/usecase/learning"
)

// quitCommand ends a session early; progress already sent is kept.
const quitCommand = ":q"

// runQuiz drives session in a bubbletea program until it completes or the
// user quits. Quitting is not an error.
func runQuiz(ctx context.Context, session *learning.Session, in io.Reader, out io.Writer) error {
	st := newStyles(out)
	if session.Done() {
		fmt.Fprintln(out, st.correct.Render("Every word of this lesson is already mastered."))
		return nil
	}

	program := tea.NewProgram(newQuizModel(ctx, session, st),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run session: %w", err)
	}
	if m, ok := final.(*quizModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

// quizModel is the bubbletea model of a learning session. Enter submits the
// typed line; after an incorrect answer the next Enter acknowledges it.
type quizModel struct {
	ctx     context.Context
	session *learning.Session
	input   textinput.Model
	styles  styles

	last     *learning.Feedback
	awaiting bool
	notice   string
	quitting bool
	err      error
}

func newQuizModel(ctx context.Context, session *learning.Session, st styles) *quizModel {
	ti := textinput.New()
	ti.Placeholder = "option number or word"
	ti.Prompt = "> "
	ti.CharLimit = 128
	ti.Focus()

	return &quizModel{
		ctx:     ctx,
		session: session,
		input:   ti,
		styles:  st,
	}
}

func (m *quizModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *quizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.enter()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *quizModel) enter() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == quitCommand {
		m.quitting = true
		return tea.Quit
	}

	if m.awaiting {
		fb, err := m.session.Acknowledge(m.ctx)
		if err != nil {
			return m.fail(err)
		}
		m.awaiting = false
		m.last = nil
		return m.moved(fb)
	}

	question, ok := m.session.Current()
	if !ok {
		return tea.Quit
	}
	resp, ok := m.response(question, line)
	if !ok {
		return nil
	}
	fb, err := m.session.Submit(m.ctx, resp)
	if err != nil {
		return m.fail(err)
	}
	m.last = &fb
	if !fb.Correct {
		m.awaiting = true
		m.notice = ""
		return nil
	}
	return m.moved(fb)
}

// moved updates the notice after the cursor advanced and quits once the session is complete.
func (m *quizModel) moved(fb learning.Feedback) tea.Cmd {
	m.notice = ""
	if fb.Complete {
		return tea.Quit
	}
	if fb.RoundEnded {
		state := m.session.State()
		m.notice = fmt.Sprintf("Round %d done, %d words to repeat", state.Round-1, len(state.Queue))
	}
	return nil
}

func (m *quizModel) fail(err error) tea.Cmd {
	m.err = err
	return tea.Quit
}

func (m *quizModel) response(q learning.Question, line string) (learning.Response, bool) {
	if !q.Phase.IsQuiz() {
		if line == "" {
			return learning.Response{}, false
		}
		m.notice = ""
		return learning.Response{Text: line}, true
	}
	choice, ok := pickChoice(q.Choices, line)
	if !ok {
		m.notice = fmt.Sprintf("pick 1-%d", len(q.Choices))
		return learning.Response{}, false
	}
	m.notice = ""
	return learning.Response{OptionID: choice.ID}, true
}

func (m *quizModel) View() string {
	if m.quitting || m.session.Done() {
		return ""
	}
	question, ok := m.session.Current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("Round %d · %s", m.session.State().Round, phaseTitle(question.Phase))))
	b.WriteString("\n")
	b.WriteString(m.styles.prompt.Render(question.Prompt))
	b.WriteString("\n")
	if question.Hint != "" && question.Phase == learning.PhaseQuizSourceToTarget {
		b.WriteString(m.styles.hint.Render("[" + question.Hint + "]"))
		b.WriteString("\n")
	}
	for i, choice := range question.Choices {
		b.WriteString(m.styles.choice.Render(fmt.Sprintf("%d) %s", i+1, choice.Text)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.awaiting && m.last != nil:
		b.WriteString(m.styles.wrong.Render("✗ answer:") + " " + m.last.Expected + "\n")
		b.WriteString(m.styles.muted.Render("press Enter to continue") + "\n")
	case m.last != nil && m.last.Correct:
		b.WriteString(m.styles.correct.Render("✓ correct") + "\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.header.Render(m.notice) + "\n")
	}
	if !m.awaiting {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(m.styles.muted.Render("Enter to answer · " + quitCommand + " or Esc to stop"))
	b.WriteString("\n")
	return b.String()
}

// pickChoice accepts a 1-based option number or the option text itself.
func pickChoice(choices []learning.Choice, line string) (learning.Choice, bool) {
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return learning.Choice{}, false
	}
	token := entity.NormalizeWordToken(line)
	if token == "" {
		return learning.Choice{}, false
	}
	for _, choice := range choices {
		if entity.NormalizeWordToken(choice.Text) == token {
			return choice, true
		}
	}
	return learning.Choice{}, false
}

func phaseTitle(p learning.Phase) string {
	switch p {
	case learning.PhaseQuizSourceToTarget:
		return "pick the meaning"
	case learning.PhaseTypeTargetToSource:
		return "type the Korean word"
	case learning.PhaseQuizTargetToSource:
		return "pick the Korean word"
	default:
		return p.String()
	}
}

func printSummary(out io.Writer, summary learning.Summary, failures int64) {
	st := newStyles(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, st.header.Render("Session summary"))
	fmt.Fprintf(out, "rounds: %d  mastered now: %d  already mastered: %d  remaining: %d\n",
		summary.Rounds, summary.Mastered, summary.AlreadyMastered, summary.Remaining)
	if failures > 0 {
		fmt.Fprintln(out, st.wrong.Render(fmt.Sprintf("%d progress updates could not be saved", failures)))
	}
}
