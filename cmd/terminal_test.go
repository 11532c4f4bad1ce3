package cmd

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/eslsoft/kovoc/internal/entity"
	"github.com/eslsoft/kovoc/internal/usecase/learning"
)

type stubLoader struct {
	detail *entity.LessonProgress
}

func (s stubLoader) GetDetail(context.Context, string) (*entity.LessonProgress, error) {
	return s.detail, nil
}

func newTestSession(t *testing.T, items ...entity.VocabularyStatus) (*learning.Session, *learning.RecordingExecutor) {
	t.Helper()
	rec := &learning.RecordingExecutor{}
	loader := stubLoader{detail: &entity.LessonProgress{LessonID: "lesson-1", Items: items}}
	session := learning.NewSession("lesson-1", loader, rec,
		learning.WithQuestionGenerator(learning.NewQuestionGenerator(rand.New(rand.NewPCG(1, 2)), 4)),
		learning.WithIDGenerator(func() string { return "session-1" }),
	)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return session, rec
}

func unlearned(id, word, meaning string) entity.VocabularyStatus {
	return entity.VocabularyStatus{
		Item:   entity.VocabularyItem{ID: id, Word: word, Meaning: meaning},
		Status: entity.StatusUnlearned,
	}
}

func newTestModel(session *learning.Session) *quizModel {
	return newQuizModel(context.Background(), session, newStyles(&bytes.Buffer{}))
}

// enterLine types line into the model and presses Enter.
func enterLine(m *quizModel, line string) tea.Cmd {
	if line != "" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestQuizRunsSessionToCompletion(t *testing.T) {
	session, rec := newTestSession(t,
		unlearned("v1", "사랑", "tình yêu"),
		unlearned("v2", "물", "nước"),
	)
	m := newTestModel(session)

	lines := []string{
		// round 1
		"tình yêu", "nước",
		"사랑", "mul", "",
		"사랑", "물",
		// round 2: only v2
		"nước", "물", "물",
	}
	var views strings.Builder
	var cmd tea.Cmd
	for i, line := range lines {
		cmd = enterLine(m, line)
		if i < len(lines)-1 && isQuit(cmd) {
			t.Fatalf("quit after line %d (%q)", i, line)
		}
		views.WriteString(m.View())
	}
	if !isQuit(cmd) {
		t.Fatal("expected the program to quit once the session completes")
	}
	if !session.Done() {
		t.Fatalf("expected session to complete, state=%+v", session.State())
	}
	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}

	text := views.String()
	for _, want := range []string{"✗ answer: 물", "press Enter to continue", "✓ correct", "Round 1 done, 1 words to repeat", "Round 2 · pick the meaning"} {
		if !strings.Contains(text, want) {
			t.Fatalf("views missing %q:\n%s", want, text)
		}
	}

	effects := rec.Effects()
	got := make([]string, 0, len(effects))
	for _, e := range effects {
		got = append(got, e.VocabularyID+"="+string(e.Status))
	}
	want := "v2=learning v1=mastered v2=mastered"
	if strings.Join(got, " ") != want {
		t.Fatalf("effects = %v, want %s", got, want)
	}

	summary := session.Summary()
	if summary.Mastered != 2 || summary.Remaining != 0 || summary.Rounds != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestQuizQuitKeepsSessionOpen(t *testing.T) {
	session, rec := newTestSession(t, unlearned("v1", "사랑", "tình yêu"), unlearned("v2", "물", "nước"))
	m := newTestModel(session)

	if cmd := enterLine(m, "7"); cmd != nil {
		t.Fatal("an out-of-range option must not end the program")
	}
	if !strings.Contains(m.View(), "pick 1-2") {
		t.Fatalf("expected range hint for an out-of-range option:\n%s", m.View())
	}
	if !isQuit(enterLine(m, quitCommand)) {
		t.Fatal("expected quit command to end the program")
	}
	if session.Done() {
		t.Fatal("session must stay active after quitting")
	}
	if m.View() != "" {
		t.Fatalf("expected empty view after quitting, got %q", m.View())
	}
	if len(rec.Effects()) != 0 {
		t.Fatalf("no answer was submitted, got effects %v", rec.Effects())
	}
}

func TestQuizEscapeQuits(t *testing.T) {
	session, _ := newTestSession(t, unlearned("v1", "사랑", "tình yêu"))
	m := newTestModel(session)

	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m.quitting = false
		if _, cmd := m.Update(tea.KeyMsg{Type: key}); !isQuit(cmd) {
			t.Fatalf("expected %s to quit", key)
		}
	}
	if session.Summary().Remaining != 1 {
		t.Fatalf("unexpected summary: %+v", session.Summary())
	}
}

func TestQuizWaitsForAcknowledge(t *testing.T) {
	session, rec := newTestSession(t, unlearned("v1", "사랑", "tình yêu"), unlearned("v2", "물", "nước"))
	m := newTestModel(session)

	enterLine(m, "nước")
	if !m.awaiting {
		t.Fatal("expected the model to wait after an incorrect answer")
	}
	if strings.Contains(m.View(), m.input.Prompt) {
		t.Fatalf("input must be hidden while waiting:\n%s", m.View())
	}
	// Whatever is typed while waiting only acknowledges.
	enterLine(m, "tình yêu")
	if m.awaiting {
		t.Fatal("expected Enter to acknowledge")
	}
	if q, _ := session.Current(); q.ItemID != "v2" {
		t.Fatalf("expected cursor on v2, got %q", q.ItemID)
	}
	if got := rec.Effects(); len(got) != 1 || got[0].VocabularyID != "v1" || got[0].Status != entity.StatusLearning {
		t.Fatalf("expected v1 promoted to learning, got %v", got)
	}
}

func TestQuizIgnoresEmptyTypedAnswer(t *testing.T) {
	session, _ := newTestSession(t, unlearned("v1", "사랑", "tình yêu"))
	m := newTestModel(session)

	enterLine(m, "1")
	enterLine(m, "")
	if q, _ := session.Current(); q.Phase != learning.PhaseTypeTargetToSource {
		t.Fatalf("expected typing phase to wait for input, got %s", q.Phase)
	}
	if m.last == nil || !m.last.Correct {
		t.Fatalf("expected the quiz answer to be correct, got %+v", m.last)
	}
}

func TestQuizAllMastered(t *testing.T) {
	mastered := unlearned("v1", "사랑", "tình yêu")
	mastered.Status = entity.StatusMastered
	session, _ := newTestSession(t, mastered)
	var out bytes.Buffer

	if err := runQuiz(context.Background(), session, strings.NewReader(""), &out); err != nil {
		t.Fatalf("runQuiz: %v", err)
	}
	if !strings.Contains(out.String(), "already mastered") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, learning.Summary{Rounds: 2, Mastered: 3, AlreadyMastered: 1}, 2)
	for _, want := range []string{"rounds: 2", "mastered now: 3", "already mastered: 1", "2 progress updates could not be saved"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("summary missing %q:\n%s", want, out.String())
		}
	}
}

func TestPickChoice(t *testing.T) {
	choices := []learning.Choice{{ID: "a", Text: "Mẹ"}, {ID: "b", Text: "bố"}}
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "a", true},
		{"2", "b", true},
		{"3", "", false},
		{"0", "", false},
		{" mẹ ", "a", true},
		{"BỐ", "b", true},
		{"ông", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := pickChoice(choices, strings.TrimSpace(c.in))
		if ok != c.ok || got.ID != c.want {
			t.Fatalf("pickChoice(%q) = (%q, %v), want (%q, %v)", c.in, got.ID, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeTables(t *testing.T) {
	got := normalizeTables([]string{" Lessons ", "vocabulary_items,VOCABULARY_STATUSES", ""})
	want := "lessons,vocabulary_items,vocabulary_statuses"
	if strings.Join(got, ",") != want {
		t.Fatalf("normalizeTables = %v, want %s", got, want)
	}
	if normalizeTables([]string{" ", ","}) != nil {
		t.Fatal("expected nil for blank input")
	}
}

func TestGzipByName(t *testing.T) {
	if !gzipByName("backup.jsonl.GZ", false) {
		t.Fatal("expected .gz suffix to enable gzip")
	}
	if gzipByName("-", false) || gzipByName("backup.jsonl", false) {
		t.Fatal("plain outputs must not be compressed")
	}
	if !gzipByName("-", true) {
		t.Fatal("explicit flag must win")
	}
}
