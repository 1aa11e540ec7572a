package server

import (
	"sync"
	"testing"
	"time"
)

func twoOptionPoll(question string) CreatePollInput {
	return CreatePollInput{
		CreatorFid:      10,
		CreatorUsername: "ada",
		Question:        question,
		PollType:        pollTypeStandard,
		Options: []Option{
			{ID: "option-1", Text: "A"},
			{ID: "option-2", Text: "B"},
		},
	}
}

func TestCreateVoteMaintainsTotals(t *testing.T) {
	store := NewStore()
	poll := store.CreatePoll(twoOptionPoll("A or B?"))

	if _, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: 1, VoterUsername: "ada", OptionID: "option-1"}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	got, _ := store.GetPoll(poll.ID)
	if got.TotalVotes != 1 {
		t.Fatalf("expected total 1, got %d", got.TotalVotes)
	}

	_, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: 1, VoterUsername: "ada", OptionID: "option-2"})
	if err != ErrDuplicateVote {
		t.Fatalf("expected duplicate vote error, got %v", err)
	}
	got, _ = store.GetPoll(poll.ID)
	if got.TotalVotes != 1 {
		t.Fatalf("duplicate vote changed total to %d", got.TotalVotes)
	}

	if _, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: 2, VoterUsername: "bob", OptionID: "option-2"}); err != nil {
		t.Fatalf("second voter failed: %v", err)
	}
	got, _ = store.GetPoll(poll.ID)
	counts, _ := store.VoteCounts(poll.ID)
	if got.TotalVotes != 2 || counts["option-1"] != 1 || counts["option-2"] != 1 {
		t.Fatalf("unexpected state: total=%d counts=%v", got.TotalVotes, counts)
	}
	if got.TotalVotes != len(store.Votes(poll.ID)) {
		t.Fatalf("counter %d does not match vote rows %d", got.TotalVotes, len(store.Votes(poll.ID)))
	}
}

func TestCreateVoteUnknownPoll(t *testing.T) {
	store := NewStore()
	if _, err := store.CreateVote(CreateVoteInput{PollID: "missing", VoterFid: 1, OptionID: "option-1"}); err != ErrPollNotFound {
		t.Fatalf("expected poll not found, got %v", err)
	}
}

func TestCreateVoteUnknownOption(t *testing.T) {
	store := NewStore()
	poll := store.CreatePoll(twoOptionPoll("A or B?"))
	if _, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: 1, OptionID: "option-9"}); err != ErrOptionNotFound {
		t.Fatalf("expected option not found, got %v", err)
	}
	got, _ := store.GetPoll(poll.ID)
	if got.TotalVotes != 0 {
		t.Fatalf("rejected vote changed total to %d", got.TotalVotes)
	}
}

func TestCreateVoteExpiredPoll(t *testing.T) {
	store := NewStore()
	past := time.Now().UTC().Add(-time.Hour)
	input := twoOptionPoll("Too late?")
	input.ExpiresAt = &past
	poll := store.CreatePoll(input)

	if _, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: 1, OptionID: "option-1"}); err != ErrPollExpired {
		t.Fatalf("expected expired error, got %v", err)
	}
	got, _ := store.GetPoll(poll.ID)
	if got.TotalVotes != 0 {
		t.Fatalf("expired vote changed total to %d", got.TotalVotes)
	}
}

func TestSetOnchainTxOnce(t *testing.T) {
	store := NewStore()
	poll := store.CreatePoll(twoOptionPoll("Anchor me"))

	updated, err := store.SetOnchainTx(poll.ID, "0xabc")
	if err != nil {
		t.Fatalf("first anchor failed: %v", err)
	}
	if !updated.IsOnchain || updated.OnchainTx != "0xabc" {
		t.Fatalf("unexpected poll after anchor: %+v", updated)
	}

	if _, err := store.SetOnchainTx(poll.ID, "0xdef"); err != ErrAlreadyAnchored {
		t.Fatalf("expected already anchored, got %v", err)
	}
	got, _ := store.GetPoll(poll.ID)
	if got.OnchainTx != "0xabc" {
		t.Fatalf("second anchor overwrote tx: %s", got.OnchainTx)
	}

	if _, err := store.SetOnchainTx("missing", "0xabc"); err != ErrPollNotFound {
		t.Fatalf("expected poll not found, got %v", err)
	}
}

func TestRatingPollGeneratesStarOptions(t *testing.T) {
	store := NewStore()
	poll := store.CreatePoll(CreatePollInput{
		CreatorFid:      10,
		CreatorUsername: "ada",
		Question:        "Rate the demo",
		PollType:        pollTypeRating,
	})
	if len(poll.Options) != 5 {
		t.Fatalf("expected 5 options, got %d", len(poll.Options))
	}
	if poll.Options[0].Text != "1 star" || poll.Options[4].Text != "5 stars" {
		t.Fatalf("unexpected option labels: %+v", poll.Options)
	}
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	store := NewStore()
	poll := store.CreatePoll(twoOptionPoll("Race me"))

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: 7, VoterUsername: "eve", OptionID: "option-1"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if err != ErrDuplicateVote {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 accepted vote, got %d", succeeded)
	}
	got, _ := store.GetPoll(poll.ID)
	if got.TotalVotes != 1 || len(store.Votes(poll.ID)) != 1 {
		t.Fatalf("store corrupted: total=%d rows=%d", got.TotalVotes, len(store.Votes(poll.ID)))
	}
}

func TestConcurrentDistinctVoters(t *testing.T) {
	store := NewStore()
	poll := store.CreatePoll(twoOptionPoll("Everyone votes"))

	const voters = 100
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(fid int64) {
			defer wg.Done()
			option := "option-1"
			if fid%2 == 0 {
				option = "option-2"
			}
			if _, err := store.CreateVote(CreateVoteInput{PollID: poll.ID, VoterFid: fid, VoterUsername: "v", OptionID: option}); err != nil {
				t.Errorf("vote by fid %d failed: %v", fid, err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	got, _ := store.GetPoll(poll.ID)
	counts, _ := store.VoteCounts(poll.ID)
	if got.TotalVotes != voters {
		t.Fatalf("expected total %d, got %d", voters, got.TotalVotes)
	}
	if counts["option-1"]+counts["option-2"] != voters {
		t.Fatalf("tallies do not add up: %v", counts)
	}
}

func TestRestoreRebuildsCounters(t *testing.T) {
	store := NewStore()
	store.RestorePoll(Poll{ID: "p1", Question: "Restored?", Options: []Option{{ID: "option-1", Text: "A"}}, TotalVotes: 99, CreatedAt: time.Now().UTC()})

	if err := store.RestoreVote(Vote{ID: "v1", PollID: "p1", VoterFid: 1, OptionID: "option-1"}); err != nil {
		t.Fatalf("restore vote failed: %v", err)
	}
	if err := store.RestoreVote(Vote{ID: "v2", PollID: "p1", VoterFid: 1, OptionID: "option-1"}); err != ErrDuplicateVote {
		t.Fatalf("expected duplicate on restore, got %v", err)
	}
	got, _ := store.GetPoll("p1")
	if got.TotalVotes != 1 {
		t.Fatalf("expected recounted total 1, got %d", got.TotalVotes)
	}
}
