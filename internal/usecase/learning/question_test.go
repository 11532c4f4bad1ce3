package learning

import (
	"math/rand/v2"
	"testing"

	"github.com/eslsoft/kovoc/internal/entity"
)

func poolOf(ids ...string) []entity.VocabularyItem {
	items := make([]entity.VocabularyItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, vocab(id, entity.StatusUnlearned).Item)
	}
	return items
}

func TestGenerateQuizChoices(t *testing.T) {
	gen := NewQuestionGenerator(rand.New(rand.NewPCG(1, 2)), DefaultOptionCount)
	pool := poolOf("a", "b", "c", "d", "e", "f")
	target := pool[2]

	for i := 0; i < 50; i++ {
		q := gen.Generate(PhaseQuizSourceToTarget, target, pool)
		if len(q.Choices) != DefaultOptionCount {
			t.Fatalf("expected %d choices, got %d", DefaultOptionCount, len(q.Choices))
		}
		seen := make(map[string]bool)
		correct := 0
		for _, c := range q.Choices {
			if seen[c.ID] {
				t.Fatalf("duplicate choice %q in %+v", c.ID, q.Choices)
			}
			seen[c.ID] = true
			if c.ID == target.ID {
				correct++
				if c.Text != target.Meaning {
					t.Errorf("expected meaning as choice text, got %q", c.Text)
				}
			}
		}
		if correct != 1 {
			t.Fatalf("expected the answer exactly once, got %d", correct)
		}
		if q.Prompt != target.Word {
			t.Errorf("expected word prompt, got %q", q.Prompt)
		}
	}
}

func TestGenerateReverseQuizUsesWords(t *testing.T) {
	gen := NewQuestionGenerator(rand.New(rand.NewPCG(3, 4)), DefaultOptionCount)
	pool := poolOf("a", "b", "c", "d")
	q := gen.Generate(PhaseQuizTargetToSource, pool[0], pool)
	if q.Prompt != pool[0].Meaning {
		t.Errorf("expected meaning prompt, got %q", q.Prompt)
	}
	for _, c := range q.Choices {
		if c.Text != "word-"+c.ID {
			t.Errorf("expected word as choice text, got %q for %s", c.Text, c.ID)
		}
	}
}

func TestGenerateWithSmallPool(t *testing.T) {
	gen := NewQuestionGenerator(rand.New(rand.NewPCG(5, 6)), DefaultOptionCount)
	pool := poolOf("a", "b")
	q := gen.Generate(PhaseQuizSourceToTarget, pool[0], pool)
	if len(q.Choices) != 2 {
		t.Fatalf("expected degraded set of 2 choices, got %+v", q.Choices)
	}

	single := gen.Generate(PhaseQuizSourceToTarget, pool[0], pool[:1])
	if len(single.Choices) != 1 || single.Choices[0].ID != "a" {
		t.Fatalf("expected only the answer, got %+v", single.Choices)
	}
}

func TestGenerateIgnoresDuplicatePoolEntries(t *testing.T) {
	gen := NewQuestionGenerator(rand.New(rand.NewPCG(7, 8)), DefaultOptionCount)
	pool := poolOf("a", "b", "b", "b", "a")
	q := gen.Generate(PhaseQuizSourceToTarget, pool[0], pool)
	if len(q.Choices) != 2 {
		t.Fatalf("expected duplicates to collapse, got %+v", q.Choices)
	}
}

func TestGenerateTypingHasNoChoices(t *testing.T) {
	gen := NewQuestionGenerator(nil, 0)
	pool := poolOf("a", "b", "c", "d")
	q := gen.Generate(PhaseTypeTargetToSource, pool[1], pool)
	if len(q.Choices) != 0 {
		t.Fatalf("expected no choices in typing phase, got %+v", q.Choices)
	}
	if q.Prompt != pool[1].Meaning {
		t.Errorf("expected meaning prompt, got %q", q.Prompt)
	}
}

func TestGenerateDoesNotReorderPool(t *testing.T) {
	gen := NewQuestionGenerator(rand.New(rand.NewPCG(9, 10)), DefaultOptionCount)
	pool := poolOf("a", "b", "c", "d", "e")
	gen.Generate(PhaseQuizSourceToTarget, pool[0], pool)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		if pool[i].ID != id {
			t.Fatalf("pool was reordered: %+v", pool)
		}
	}
}

func TestGenerateDropsSynonymDistractors(t *testing.T) {
	gen := NewQuestionGenerator(rand.New(rand.NewPCG(5, 6)), DefaultOptionCount)
	// 어머니 and 엄마 both mean "mẹ"; 아빠 and 아버지 both mean "bố".
	pool := []entity.VocabularyItem{
		{ID: "v1", Word: "어머니", Meaning: "mẹ"},
		{ID: "v2", Word: "엄마", Meaning: "Mẹ "},
		{ID: "v3", Word: "아버지", Meaning: "bố"},
		{ID: "v4", Word: "아빠", Meaning: "bố"},
		{ID: "v5", Word: "형", Meaning: "anh trai"},
		{ID: "v6", Word: "누나", Meaning: "chị gái"},
	}

	for i := 0; i < 50; i++ {
		q := gen.Generate(PhaseQuizSourceToTarget, pool[0], pool)
		texts := make(map[string]string)
		for _, c := range q.Choices {
			key := entity.NormalizeWordToken(c.Text)
			if other, ok := texts[key]; ok {
				t.Fatalf("choices %s and %s both read %q: %+v", other, c.ID, c.Text, q.Choices)
			}
			texts[key] = c.ID
			if c.ID == "v2" {
				t.Fatalf("synonym of the answer offered as distractor: %+v", q.Choices)
			}
		}
		if len(q.Choices) != DefaultOptionCount {
			t.Fatalf("expected %d choices, got %+v", DefaultOptionCount, q.Choices)
		}
	}

	// In the word-picking phase the same items are distinct again.
	q := gen.Generate(PhaseQuizTargetToSource, pool[0], pool[:2])
	if len(q.Choices) != 2 {
		t.Fatalf("expected both words as choices, got %+v", q.Choices)
	}
}
