package exam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/abhisek/secprep/internal/bank"
)

// TestExamFeatures runs the exam session feature scenarios.
func TestExamFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "exam-session",
		ScenarioInitializer: initializeExamScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "exam_session.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

type examScenario struct {
	bank    *bank.Bank
	session *Session
	lastErr error
}

func initializeExamScenario(ctx *godog.ScenarioContext) {
	sc := &examScenario{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*sc = examScenario{}
		return ctx, nil
	})

	ctx.Step(`^a bank with correct answers "([^"]+)" and (\d+) options per question$`, sc.givenBank)
	ctx.Step(`^a session with a budget of (\d+) seconds$`, sc.givenSession)
	ctx.Step(`^I answer "([^"]+)"$`, sc.answer)
	ctx.Step(`^I select option (\d+) on question (\d+)$`, sc.selectOn)
	ctx.Step(`^I submit$`, sc.submit)
	ctx.Step(`^I restart$`, sc.restart)
	ctx.Step(`^(\d+) seconds pass$`, sc.secondsPass)
	ctx.Step(`^I go back (\d+) times$`, sc.goBack)
	ctx.Step(`^I go forward (\d+) times$`, sc.goForward)
	ctx.Step(`^the score is (\d+)$`, sc.scoreIs)
	ctx.Step(`^the session is completed$`, sc.isCompleted)
	ctx.Step(`^the session is active$`, sc.isActive)
	ctx.Step(`^(\d+) seconds remain$`, sc.remain)
	ctx.Step(`^the last call failed with an invalid argument$`, sc.lastInvalid)
	ctx.Step(`^question (\d+) has answer (\d+)$`, sc.questionHasAnswer)
	ctx.Step(`^the current question is (\d+)$`, sc.currentIs)
	ctx.Step(`^no question is answered$`, sc.noneAnswered)
}

func parseInts(list string) ([]int, error) {
	parts := strings.Split(list, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (sc *examScenario) givenBank(key string, options int) error {
	correct, err := parseInts(key)
	if err != nil {
		return err
	}
	b := &bank.Bank{Slug: "scenario", Title: "Scenario", Version: "v1.0.0"}
	for i, c := range correct {
		opts := make([]string, options)
		for j := range opts {
			opts[j] = fmt.Sprintf("option %d", j+1)
		}
		b.Questions = append(b.Questions, bank.Question{
			ID: i + 1, Prompt: fmt.Sprintf("question %d", i+1), Options: opts, Correct: c,
		})
	}
	sc.bank = b
	return bank.Validate(b)
}

func (sc *examScenario) givenSession(budget int) error {
	s, err := New(sc.bank, budget)
	sc.session = s
	return err
}

func (sc *examScenario) answer(list string) error {
	answers, err := parseInts(list)
	if err != nil {
		return err
	}
	for i, a := range answers {
		if err := sc.session.JumpTo(i); err != nil {
			return err
		}
		if err := sc.session.SelectAnswer(a); err != nil {
			return err
		}
	}
	return nil
}

func (sc *examScenario) selectOn(option, question int) error {
	if err := sc.session.JumpTo(question - 1); err != nil {
		return err
	}
	sc.lastErr = sc.session.SelectAnswer(option)
	return nil
}

func (sc *examScenario) submit() error {
	sc.session.Submit()
	return nil
}

func (sc *examScenario) restart() error {
	sc.session.Restart()
	return nil
}

func (sc *examScenario) secondsPass(n int) error {
	for i := 0; i < n; i++ {
		sc.session.Tick()
	}
	return nil
}

func (sc *examScenario) goBack(n int) error {
	for i := 0; i < n; i++ {
		sc.session.Previous()
	}
	return nil
}

func (sc *examScenario) goForward(n int) error {
	for i := 0; i < n; i++ {
		sc.session.Next()
	}
	return nil
}

func (sc *examScenario) scoreIs(want int) error {
	if got := sc.session.Score(); got != want {
		return fmt.Errorf("score = %d, want %d", got, want)
	}
	return nil
}

func (sc *examScenario) isCompleted() error {
	if !sc.session.Completed() {
		return errors.New("session is still active")
	}
	return nil
}

func (sc *examScenario) isActive() error {
	if sc.session.Completed() {
		return errors.New("session is completed")
	}
	return nil
}

func (sc *examScenario) remain(want int) error {
	if got := sc.session.RemainingSeconds(); got != want {
		return fmt.Errorf("remaining = %d, want %d", got, want)
	}
	return nil
}

func (sc *examScenario) lastInvalid() error {
	if !errors.Is(sc.lastErr, ErrInvalidArgument) {
		return fmt.Errorf("last error = %v, want invalid argument", sc.lastErr)
	}
	return nil
}

func (sc *examScenario) questionHasAnswer(question, want int) error {
	if got := sc.session.Answer(question - 1); got != want {
		return fmt.Errorf("question %d answer = %d, want %d", question, got, want)
	}
	return nil
}

func (sc *examScenario) currentIs(want int) error {
	if got := sc.session.CurrentIndex() + 1; got != want {
		return fmt.Errorf("current question = %d, want %d", got, want)
	}
	return nil
}

func (sc *examScenario) noneAnswered() error {
	if n := sc.session.AnsweredCount(); n != 0 {
		return fmt.Errorf("%d questions answered", n)
	}
	return nil
}
