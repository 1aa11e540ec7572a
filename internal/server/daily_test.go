package server

import (
	"testing"
	"time"
)

func fixedDay(store *Store, day time.Time) {
	store.now = func() time.Time { return day }
}

func TestDailyStreakConsecutiveDays(t *testing.T) {
	store := NewStore()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		fixedDay(store, day.AddDate(0, 0, i))
		question := store.EnsureDailyQuestion(dateKey(store.now()))
		_, streak, err := store.CreateDailyVote(CreateDailyVoteInput{
			VoterFid:      1,
			VoterUsername: "ada",
			OptionID:      question.Options[0].ID,
		})
		if err != nil {
			t.Fatalf("day %d vote failed: %v", i+1, err)
		}
		if streak.Current != i+1 {
			t.Fatalf("expected streak %d, got %d", i+1, streak.Current)
		}
	}

	// Skip a day: streak resets, best survives.
	fixedDay(store, day.AddDate(0, 0, 4))
	question := store.EnsureDailyQuestion(dateKey(store.now()))
	_, streak, err := store.CreateDailyVote(CreateDailyVoteInput{
		VoterFid:      1,
		VoterUsername: "ada",
		OptionID:      question.Options[0].ID,
	})
	if err != nil {
		t.Fatalf("vote after gap failed: %v", err)
	}
	if streak.Current != 1 {
		t.Fatalf("expected reset to 1, got %d", streak.Current)
	}
	if streak.Best != 3 {
		t.Fatalf("expected best 3, got %d", streak.Best)
	}
}

func TestDailyDuplicateSameDay(t *testing.T) {
	store := NewStore()
	fixedDay(store, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))
	question := store.EnsureDailyQuestion(dateKey(store.now()))

	if _, _, err := store.CreateDailyVote(CreateDailyVoteInput{VoterFid: 1, VoterUsername: "ada", OptionID: question.Options[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, _, err := store.CreateDailyVote(CreateDailyVoteInput{VoterFid: 1, VoterUsername: "ada", OptionID: question.Options[1].ID})
	if err != ErrDuplicateVote {
		t.Fatalf("expected duplicate, got %v", err)
	}

	streak := store.StreakFor(1)
	if streak.Current != 1 || streak.Best != 1 {
		t.Fatalf("duplicate changed streak: %+v", streak)
	}
}

func TestDailyUnknownOption(t *testing.T) {
	store := NewStore()
	fixedDay(store, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))
	store.EnsureDailyQuestion(dateKey(store.now()))

	if _, _, err := store.CreateDailyVote(CreateDailyVoteInput{VoterFid: 1, VoterUsername: "ada", OptionID: "nope"}); err != ErrOptionNotFound {
		t.Fatalf("expected option not found, got %v", err)
	}
}

func TestYesterdayResult(t *testing.T) {
	store := NewStore()
	day := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)

	fixedDay(store, day)
	question := store.SetDailyQuestion(dateKey(day), "Cats or dogs?", []Option{{Text: "Cats"}, {Text: "Dogs"}})
	for fid := int64(1); fid <= 3; fid++ {
		option := question.Options[0].ID
		if fid == 3 {
			option = question.Options[1].ID
		}
		if _, _, err := store.CreateDailyVote(CreateDailyVoteInput{VoterFid: fid, VoterUsername: "v", OptionID: option}); err != nil {
			t.Fatalf("seed vote failed: %v", err)
		}
	}

	fixedDay(store, day.AddDate(0, 0, 1))
	result, ok := store.YesterdayResult()
	if !ok {
		t.Fatal("expected a result for yesterday")
	}
	if result.Text != "Cats" || result.Votes != 2 {
		t.Fatalf("unexpected winner: %+v", result)
	}
	if result.Percent < 66 || result.Percent > 67 {
		t.Fatalf("unexpected percent: %f", result.Percent)
	}

	// Two days later there is no record for "yesterday".
	fixedDay(store, day.AddDate(0, 0, 2))
	if _, ok := store.YesterdayResult(); ok {
		t.Fatal("expected no result after gap")
	}
}

func TestSetDailyQuestionKeepsVotedQuestion(t *testing.T) {
	store := NewStore()
	fixedDay(store, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))
	today := dateKey(store.now())

	question := store.SetDailyQuestion(today, "First?", []Option{{Text: "Yes"}, {Text: "No"}})
	if _, _, err := store.CreateDailyVote(CreateDailyVoteInput{VoterFid: 1, VoterUsername: "ada", OptionID: question.Options[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	replaced := store.SetDailyQuestion(today, "Second?", []Option{{Text: "A"}, {Text: "B"}})
	if replaced.Question != "First?" {
		t.Fatalf("voted question was replaced: %q", replaced.Question)
	}
}

func TestEnsureDailyQuestionStable(t *testing.T) {
	store := NewStore()
	first := store.EnsureDailyQuestion("2026-08-10")
	second := store.EnsureDailyQuestion("2026-08-10")
	if first.ID != second.ID || first.Question != second.Question {
		t.Fatalf("rotation pick not stable: %q vs %q", first.Question, second.Question)
	}
	if len(first.Options) < 2 {
		t.Fatalf("rotation question has too few options: %+v", first.Options)
	}
}
