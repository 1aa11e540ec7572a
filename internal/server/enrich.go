package server

import (
	"context"
	"fmt"
	"time"
)

type ReactionView struct {
	Fid      int64     `json:"fid,omitempty"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	Reaction string    `json:"reaction"`
	VotedAt  time.Time `json:"voted_at"`
}

type VoterView struct {
	Fid      int64     `json:"fid,omitempty"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar,omitempty"`
	OptionID string    `json:"option_id"`
	Reaction string    `json:"reaction,omitempty"`
	VotedAt  time.Time `json:"voted_at"`
}

type EnrichedPoll struct {
	Poll
	VoteCounts        map[string]int `json:"vote_counts"`
	UserVotedOptionID string         `json:"user_voted_option_id,omitempty"`
	LeadingOptionID   string         `json:"leading_option_id,omitempty"`
	Reactions         []ReactionView `json:"reactions"`
}

// EnrichPoll attaches the derived read-side data to a poll: tallies,
// the viewer's own choice, and reactions. All voter identity passes
// through the anonymity projection before leaving the store.
func (s *Store) EnrichPoll(pollID string, viewerFid int64) (EnrichedPoll, error) {
	poll, ok := s.GetPoll(pollID)
	if !ok {
		return EnrichedPoll{}, ErrPollNotFound
	}
	counts, err := s.VoteCounts(pollID)
	if err != nil {
		return EnrichedPoll{}, err
	}

	enriched := EnrichedPoll{
		Poll:       poll,
		VoteCounts: counts,
		Reactions:  make([]ReactionView, 0),
	}
	if viewerFid != 0 {
		if vote, voted := s.VoteFor(pollID, viewerFid); voted {
			enriched.UserVotedOptionID = vote.OptionID
		}
	}
	if poll.IsPrediction {
		enriched.LeadingOptionID = leadingOption(poll.Options, counts)
	}
	for _, vote := range s.Votes(pollID) {
		if vote.Reaction == "" {
			continue
		}
		view := ReactionView{
			Fid:      vote.VoterFid,
			Username: vote.VoterUsername,
			Avatar:   vote.VoterAvatar,
			Reaction: vote.Reaction,
			VotedAt:  vote.CreatedAt,
		}
		if poll.IsAnonymous {
			view.Fid = 0
			view.Username = anonymousName
			view.Avatar = ""
		}
		enriched.Reactions = append(enriched.Reactions, view)
	}
	return enriched, nil
}

// Voters projects the voter list for external callers, applying the
// anonymity redaction at the read boundary.
func (s *Store) Voters(pollID string) ([]VoterView, error) {
	poll, ok := s.GetPoll(pollID)
	if !ok {
		return nil, ErrPollNotFound
	}
	votes := s.Votes(pollID)
	views := make([]VoterView, 0, len(votes))
	for _, vote := range votes {
		view := VoterView{
			Fid:      vote.VoterFid,
			Username: vote.VoterUsername,
			Avatar:   vote.VoterAvatar,
			OptionID: vote.OptionID,
			Reaction: vote.Reaction,
			VotedAt:  vote.CreatedAt,
		}
		if poll.IsAnonymous {
			view.Fid = 0
			view.Username = anonymousName
			view.Avatar = ""
		}
		views = append(views, view)
	}
	return views, nil
}

// leadingOption returns the option with the highest tally, earlier
// display order winning ties.
func leadingOption(options []Option, counts map[string]int) string {
	leading := ""
	best := -1
	for _, option := range options {
		if counts[option.ID] > best {
			best = counts[option.ID]
			leading = option.ID
		}
	}
	return leading
}

type OptionShare struct {
	OptionID string  `json:"option_id"`
	Votes    int     `json:"votes"`
	Percent  float64 `json:"percent"`
}

type NetworkBreakdown struct {
	NetworkTotal  int           `json:"network_total"`
	EveryoneTotal int           `json:"everyone_total"`
	Network       []OptionShare `json:"network"`
	Everyone      []OptionShare `json:"everyone"`
}

// networkBreakdown splits a poll's votes between people the viewer
// mutually follows and everyone else. The privacy floor is checked
// before any per-option share is computed.
func (s *Server) networkBreakdown(ctx context.Context, pollID string, viewerFid int64) (NetworkBreakdown, error) {
	poll, ok := s.store.GetPoll(pollID)
	if !ok {
		return NetworkBreakdown{}, ErrPollNotFound
	}
	if poll.TotalVotes < s.cfg.BreakdownMinVotes {
		return NetworkBreakdown{}, ErrNotEnoughVotes
	}

	networkCounts := make(map[string]int)
	everyoneCounts := make(map[string]int)
	networkTotal, everyoneTotal := 0, 0
	for _, vote := range s.store.Votes(pollID) {
		mutual, err := s.graph.IsMutual(ctx, viewerFid, vote.VoterFid)
		if err != nil {
			return NetworkBreakdown{}, fmt.Errorf("%w: %v", ErrGraphUnavailable, err)
		}
		if mutual {
			networkCounts[vote.OptionID]++
			networkTotal++
		} else {
			everyoneCounts[vote.OptionID]++
			everyoneTotal++
		}
	}

	return NetworkBreakdown{
		NetworkTotal:  networkTotal,
		EveryoneTotal: everyoneTotal,
		Network:       optionShares(poll.Options, networkCounts, networkTotal),
		Everyone:      optionShares(poll.Options, everyoneCounts, everyoneTotal),
	}, nil
}

func optionShares(options []Option, counts map[string]int, total int) []OptionShare {
	shares := make([]OptionShare, 0, len(options))
	for _, option := range options {
		share := OptionShare{OptionID: option.ID, Votes: counts[option.ID]}
		if total > 0 {
			share.Percent = float64(share.Votes) * 100 / float64(total)
		}
		shares = append(shares, share)
	}
	return shares
}
