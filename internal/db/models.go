package db

import (
	"time"

	"gorm.io/datatypes"
)

type Poll struct {
	ID              string         `gorm:"primaryKey;size:36"`
	CreatorFid      int64          `gorm:"index;not null"`
	CreatorUsername string         `gorm:"size:64;not null"`
	CreatorAvatar   string         `gorm:"size:512"`
	Question        string         `gorm:"size:200;not null"`
	PollType        string         `gorm:"size:16;not null"`
	Options         datatypes.JSON `gorm:"type:jsonb;not null"`
	IsAnonymous     bool           `gorm:"not null;default:false"`
	IsPrediction    bool           `gorm:"not null;default:false"`
	IsOnchain       bool           `gorm:"not null;default:false"`
	OnchainTx       string         `gorm:"size:128"`
	ExpiresAt       *time.Time
	TotalVotes      int       `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"index;not null"`
	Votes           []Vote
}

type Vote struct {
	ID            string    `gorm:"primaryKey;size:36"`
	PollID        string    `gorm:"size:36;index;not null;uniqueIndex:idx_votes_poll_voter"`
	VoterFid      int64     `gorm:"not null;uniqueIndex:idx_votes_poll_voter"`
	VoterUsername string    `gorm:"size:64;not null"`
	VoterAvatar   string    `gorm:"size:512"`
	OptionID      string    `gorm:"size:36;not null"`
	Prediction    string    `gorm:"size:36"`
	Reaction      string    `gorm:"size:80"`
	CreatedAt     time.Time `gorm:"not null"`
}

type DailyQuestion struct {
	ID         string         `gorm:"primaryKey;size:36"`
	ActiveDate string         `gorm:"size:10;uniqueIndex;not null"`
	Question   string         `gorm:"size:200;not null"`
	Options    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	Votes      []DailyVote    `gorm:"foreignKey:QuestionID"`
}

type DailyVote struct {
	ID            string    `gorm:"primaryKey;size:36"`
	QuestionID    string    `gorm:"size:36;index;not null;uniqueIndex:idx_daily_votes_question_voter"`
	VoterFid      int64     `gorm:"not null;uniqueIndex:idx_daily_votes_question_voter"`
	VoterUsername string    `gorm:"size:64;not null"`
	VoterAvatar   string    `gorm:"size:512"`
	OptionID      string    `gorm:"size:36;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

type Streak struct {
	VoterFid     int64  `gorm:"primaryKey"`
	Current      int    `gorm:"not null;default:0"`
	Best         int    `gorm:"not null;default:0"`
	LastVoteDate string `gorm:"size:10"`
	UpdatedAt    time.Time
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	PollID    *string        `gorm:"size:36;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
