package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type voteKey struct {
	scopeID string
	fid     int64
}

// Store owns the authoritative in-memory collections. Every operation
// runs to completion under a single mutex, so the duplicate-vote check
// and the counter increment behave as one atomic unit.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	nextSeq int64

	polls    []*Poll
	pollByID map[string]*Poll
	votes    map[string][]*Vote
	voted    map[voteKey]*Vote

	dailies    map[string]*DailyQuestion
	dailyVotes map[string][]*Vote
	dailyVoted map[voteKey]*Vote
	streaks    map[int64]*Streak
}

func NewStore() *Store {
	return &Store{
		now:        timeNowUTC,
		pollByID:   make(map[string]*Poll),
		votes:      make(map[string][]*Vote),
		voted:      make(map[voteKey]*Vote),
		dailies:    make(map[string]*DailyQuestion),
		dailyVotes: make(map[string][]*Vote),
		dailyVoted: make(map[voteKey]*Vote),
		streaks:    make(map[int64]*Streak),
	}
}

func (s *Store) CreatePoll(input CreatePollInput) Poll {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := &Poll{
		ID:              uuid.NewString(),
		CreatorFid:      input.CreatorFid,
		CreatorUsername: input.CreatorUsername,
		CreatorAvatar:   input.CreatorAvatar,
		Question:        input.Question,
		PollType:        input.PollType,
		Options:         normalizeOptions(input.PollType, input.Options),
		IsAnonymous:     input.IsAnonymous,
		IsPrediction:    input.IsPrediction,
		IsOnchain:       input.IsOnchain,
		ExpiresAt:       input.ExpiresAt,
		CreatedAt:       s.now(),
	}
	if poll.PollType == "" {
		poll.PollType = pollTypeStandard
	}
	s.nextSeq++
	poll.seq = s.nextSeq

	// Head insert keeps the natural order reverse-chronological.
	s.polls = append([]*Poll{poll}, s.polls...)
	s.pollByID[poll.ID] = poll
	return clonePoll(poll)
}

func (s *Store) GetPoll(id string) (Poll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.pollByID[id]
	if !ok {
		return Poll{}, false
	}
	return clonePoll(poll), true
}

// CreateVote inserts a vote and increments the poll counter in the same
// critical section; both happen or neither does.
func (s *Store) CreateVote(input CreateVoteInput) (Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.pollByID[input.PollID]
	if !ok {
		return Vote{}, ErrPollNotFound
	}
	if poll.ExpiresAt != nil && !poll.ExpiresAt.After(s.now()) {
		return Vote{}, ErrPollExpired
	}
	if !hasOption(poll.Options, input.OptionID) {
		return Vote{}, ErrOptionNotFound
	}
	key := voteKey{scopeID: poll.ID, fid: input.VoterFid}
	if _, dup := s.voted[key]; dup {
		return Vote{}, ErrDuplicateVote
	}

	vote := &Vote{
		ID:            uuid.NewString(),
		PollID:        poll.ID,
		VoterFid:      input.VoterFid,
		VoterUsername: input.VoterUsername,
		VoterAvatar:   input.VoterAvatar,
		OptionID:      input.OptionID,
		Prediction:    input.Prediction,
		Reaction:      input.Reaction,
		CreatedAt:     s.now(),
	}
	s.votes[poll.ID] = append(s.votes[poll.ID], vote)
	s.voted[key] = vote
	poll.TotalVotes++
	return *vote, nil
}

// SetOnchainTx records the one-time ledger transaction reference.
func (s *Store) SetOnchainTx(pollID, txHash string) (Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.pollByID[pollID]
	if !ok {
		return Poll{}, ErrPollNotFound
	}
	if poll.OnchainTx != "" {
		return Poll{}, ErrAlreadyAnchored
	}
	poll.OnchainTx = txHash
	poll.IsOnchain = true
	return clonePoll(poll), nil
}

// VoteCounts recomputes the per-option tally from the vote rows on
// every call; the poll-level total is the only maintained counter.
func (s *Store) VoteCounts(pollID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pollByID[pollID]; !ok {
		return nil, ErrPollNotFound
	}
	counts := make(map[string]int)
	for _, vote := range s.votes[pollID] {
		counts[vote.OptionID]++
	}
	return counts, nil
}

func (s *Store) Votes(pollID string) []Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Vote, 0, len(s.votes[pollID]))
	for _, vote := range s.votes[pollID] {
		list = append(list, *vote)
	}
	return list
}

func (s *Store) VoteFor(pollID string, fid int64) (Vote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.voted[voteKey{scopeID: pollID, fid: fid}]
	if !ok {
		return Vote{}, false
	}
	return *vote, true
}

func (s *Store) ListPolls() []Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		list = append(list, clonePoll(poll))
	}
	return list
}

func (s *Store) PollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.polls)
}

// RestorePoll reinserts an archived poll. Callers feed polls oldest
// first so head insertion rebuilds the reverse-chronological order.
func (s *Store) RestorePoll(poll Poll) {
	s.mu.Lock()
	defer s.mu.Unlock()
	restored := poll
	restored.TotalVotes = 0
	s.nextSeq++
	restored.seq = s.nextSeq
	s.polls = append([]*Poll{&restored}, s.polls...)
	s.pollByID[restored.ID] = &restored
}

// RestoreVote reattaches an archived vote and recounts it, so the
// counter invariant holds regardless of what the archive recorded.
func (s *Store) RestoreVote(vote Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.pollByID[vote.PollID]
	if !ok {
		return ErrPollNotFound
	}
	key := voteKey{scopeID: vote.PollID, fid: vote.VoterFid}
	if _, dup := s.voted[key]; dup {
		return ErrDuplicateVote
	}
	restored := vote
	s.votes[vote.PollID] = append(s.votes[vote.PollID], &restored)
	s.voted[key] = &restored
	poll.TotalVotes++
	return nil
}

func normalizeOptions(pollType string, options []Option) []Option {
	if pollType == pollTypeRating {
		return ratingOptions()
	}
	out := make([]Option, len(options))
	copy(out, options)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = fmt.Sprintf("option-%d", i+1)
		}
	}
	return out
}

// ratingOptions are the fixed five star levels of a rating poll.
func ratingOptions() []Option {
	out := make([]Option, 5)
	for i := range out {
		label := fmt.Sprintf("%d stars", i+1)
		if i == 0 {
			label = "1 star"
		}
		out[i] = Option{ID: fmt.Sprintf("option-%d", i+1), Text: label}
	}
	return out
}

func hasOption(options []Option, id string) bool {
	for _, option := range options {
		if option.ID == id {
			return true
		}
	}
	return false
}

func clonePoll(poll *Poll) Poll {
	out := *poll
	out.Options = append([]Option(nil), poll.Options...)
	if poll.ExpiresAt != nil {
		expires := *poll.ExpiresAt
		out.ExpiresAt = &expires
	}
	return out
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
