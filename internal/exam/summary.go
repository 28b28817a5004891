package exam

import "github.com/abhisek/secprep/internal/bank"

// ReviewItem pairs a question with the candidate's answer for the review list.
type ReviewItem struct {
	Index    int
	Question bank.Question
	Answer   int
}

// Answered reports whether an option was chosen.
func (r ReviewItem) Answered() bool { return r.Answer != Unanswered }

// Correct reports whether the chosen option is the right one.
func (r ReviewItem) Correct() bool {
	return r.Answered() && r.Question.IsCorrect(r.Answer)
}

// Summary holds the data displayed on the results screen.
type Summary struct {
	TestType   string
	Title      string
	Score      int
	Total      int
	Answered   int
	Percentage int
	TimeTaken  int
	Reason     CompletionReason
	Items      []ReviewItem
}

// Summary builds the results view. Call it after completion; before that the
// score is zero.
func (s *Session) Summary() *Summary {
	items := make([]ReviewItem, len(s.answers))
	for i, a := range s.answers {
		items[i] = ReviewItem{Index: i, Question: s.bank.Question(i), Answer: a}
	}
	return &Summary{
		TestType:   s.TestType(),
		Title:      s.bank.Title,
		Score:      s.score,
		Total:      len(s.answers),
		Answered:   s.AnsweredCount(),
		Percentage: s.CompletionPercentage(),
		TimeTaken:  s.TimeTaken(),
		Reason:     s.reason,
		Items:      items,
	}
}

// Missed returns the review items that were wrong or unanswered.
func (sum *Summary) Missed() []ReviewItem {
	var out []ReviewItem
	for _, it := range sum.Items {
		if !it.Correct() {
			out = append(out, it)
		}
	}
	return out
}

// ByCategory tallies correct answers per category tag, in first-seen order.
// Questions without a category are grouped under "general".
func (sum *Summary) ByCategory() []CategoryScore {
	idx := make(map[string]int)
	var out []CategoryScore
	for _, it := range sum.Items {
		cat := it.Question.Category
		if cat == "" {
			cat = "general"
		}
		i, ok := idx[cat]
		if !ok {
			i = len(out)
			idx[cat] = i
			out = append(out, CategoryScore{Category: cat})
		}
		out[i].Total++
		if it.Correct() {
			out[i].Correct++
		}
	}
	return out
}

// CategoryScore is a per-category tally.
type CategoryScore struct {
	Category string
	Correct  int
	Total    int
}
