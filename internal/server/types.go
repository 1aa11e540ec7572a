package server

import "time"

const (
	pollTypeStandard   = "standard"
	pollTypeImage      = "image"
	pollTypeThisOrThat = "this_or_that"
	pollTypeRating     = "rating"
)

// anonymousName replaces voter usernames in every projection of an
// anonymous poll. Stored votes keep the real identity.
const anonymousName = "Anonymous"

type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

type Poll struct {
	ID              string     `json:"id"`
	CreatorFid      int64      `json:"creator_fid"`
	CreatorUsername string     `json:"creator_username"`
	CreatorAvatar   string     `json:"creator_avatar,omitempty"`
	Question        string     `json:"question"`
	PollType        string     `json:"poll_type"`
	Options         []Option   `json:"options"`
	IsAnonymous     bool       `json:"is_anonymous"`
	IsPrediction    bool       `json:"is_prediction"`
	IsOnchain       bool       `json:"is_onchain"`
	OnchainTx       string     `json:"onchain_tx,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	TotalVotes      int        `json:"total_votes"`

	// seq is the insertion counter, used to break created_at ties in
	// feed order. Newer insertions get higher values.
	seq int64
}

type Vote struct {
	ID            string    `json:"id"`
	PollID        string    `json:"poll_id"`
	VoterFid      int64     `json:"voter_fid"`
	VoterUsername string    `json:"voter_username"`
	VoterAvatar   string    `json:"voter_avatar,omitempty"`
	OptionID      string    `json:"option_id"`
	Prediction    string    `json:"prediction,omitempty"`
	Reaction      string    `json:"reaction,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DailyQuestion is a standalone question shown once per calendar date,
// with its own vote tally separate from regular polls.
type DailyQuestion struct {
	ID         string    `json:"id"`
	ActiveDate string    `json:"active_date"`
	Question   string    `json:"question"`
	Options    []Option  `json:"options"`
	CreatedAt  time.Time `json:"created_at"`
	TotalVotes int       `json:"total_votes"`
}

type Streak struct {
	Fid          int64  `json:"fid"`
	Current      int    `json:"current_streak"`
	Best         int    `json:"best_streak"`
	LastVoteDate string `json:"last_vote_date,omitempty"`
}

type CreatePollInput struct {
	CreatorFid      int64
	CreatorUsername string
	CreatorAvatar   string
	Question        string
	PollType        string
	Options         []Option
	IsAnonymous     bool
	IsPrediction    bool
	IsOnchain       bool
	ExpiresAt       *time.Time
}

type CreateVoteInput struct {
	PollID        string
	VoterFid      int64
	VoterUsername string
	VoterAvatar   string
	OptionID      string
	Prediction    string
	Reaction      string
}
