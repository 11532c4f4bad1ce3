package learning

import (
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/eslsoft/kovoc/internal/entity"
)

// DefaultOptionCount is the size of a quiz option set: three distractors and the answer.
const DefaultOptionCount = 4

// Choice is one selectable answer of a quiz question. ID is the vocabulary id.
type Choice struct {
	ID   string
	Text string
}

// Question is what the user sees for the item under the cursor.
type Question struct {
	Phase   Phase
	ItemID  string
	Prompt  string
	Hint    string
	Choices []Choice
}

// QuestionGenerator builds prompts and shuffled option sets. It is not safe
// for concurrent use because it owns its random source.
type QuestionGenerator struct {
	rnd         *rand.Rand
	optionCount int
}

// NewQuestionGenerator returns a generator drawing from rnd. A nil rnd uses a
// randomly seeded source; optionCount below 2 falls back to DefaultOptionCount.
func NewQuestionGenerator(rnd *rand.Rand, optionCount int) *QuestionGenerator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if optionCount < 2 {
		optionCount = DefaultOptionCount
	}
	return &QuestionGenerator{rnd: rnd, optionCount: optionCount}
}

// Generate builds the question for target. Quiz phases get up to optionCount
// choices, unique by id and by displayed text; with fewer than optionCount-1 other items in the pool the
// set is smaller. The typing phase has no choices.
func (g *QuestionGenerator) Generate(phase Phase, target entity.VocabularyItem, pool []entity.VocabularyItem) Question {
	question := Question{
		Phase:  phase,
		ItemID: target.ID,
		Hint:   target.Pronunciation,
	}
	switch phase {
	case PhaseQuizSourceToTarget:
		question.Prompt = target.Word
	default:
		question.Prompt = target.Meaning
	}
	if !phase.IsQuiz() {
		return question
	}

	items := append(g.distractors(phase, target, pool), target)
	g.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	question.Choices = lo.Map(items, func(item entity.VocabularyItem, _ int) Choice {
		return Choice{ID: item.ID, Text: choiceText(phase, item)}
	})
	return question
}

// distractors samples without replacement from the pool, excluding the target.
// Options read the same as the answer or as each other are dropped so every
// choice on screen is distinguishable.
func (g *QuestionGenerator) distractors(phase Phase, target entity.VocabularyItem, pool []entity.VocabularyItem) []entity.VocabularyItem {
	answer := entity.NormalizeWordToken(choiceText(phase, target))
	candidates := lo.Filter(pool, func(item entity.VocabularyItem, _ int) bool {
		return item.ID != "" && item.ID != target.ID &&
			entity.NormalizeWordToken(choiceText(phase, item)) != answer
	})
	g.rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	candidates = lo.UniqBy(candidates, func(item entity.VocabularyItem) string {
		return item.ID
	})
	candidates = lo.UniqBy(candidates, func(item entity.VocabularyItem) string {
		return entity.NormalizeWordToken(choiceText(phase, item))
	})
	if limit := g.optionCount - 1; len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func choiceText(phase Phase, item entity.VocabularyItem) string {
	if phase == PhaseQuizSourceToTarget {
		return item.Meaning
	}
	return item.Word
}
