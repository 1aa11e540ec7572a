package server

import (
	"encoding/json"
	"errors"

	"pollcast/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// Write-behind archive. The in-memory store stays authoritative; every
// call here is a no-op without a configured database, and archive
// failures never fail the request.

type EventPayload struct {
	PollID     string `json:"poll_id,omitempty"`
	VoteID     string `json:"vote_id,omitempty"`
	VoterFid   int64  `json:"voter_fid,omitempty"`
	OptionID   string `json:"option_id,omitempty"`
	TxHash     string `json:"tx_hash,omitempty"`
	ActiveDate string `json:"active_date,omitempty"`
	Streak     int    `json:"streak,omitempty"`
}

func (s *Server) archivePoll(poll Poll) error {
	if s.db == nil {
		return nil
	}
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return err
	}
	record := db.Poll{
		ID:              poll.ID,
		CreatorFid:      poll.CreatorFid,
		CreatorUsername: poll.CreatorUsername,
		CreatorAvatar:   poll.CreatorAvatar,
		Question:        poll.Question,
		PollType:        poll.PollType,
		Options:         datatypes.JSON(options),
		IsAnonymous:     poll.IsAnonymous,
		IsPrediction:    poll.IsPrediction,
		IsOnchain:       poll.IsOnchain,
		OnchainTx:       poll.OnchainTx,
		ExpiresAt:       poll.ExpiresAt,
		TotalVotes:      poll.TotalVotes,
		CreatedAt:       poll.CreatedAt,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	return s.archiveEvent("poll_created", &poll.ID, EventPayload{
		PollID: poll.ID,
	})
}

func (s *Server) archiveVote(vote Vote) error {
	if s.db == nil {
		return nil
	}
	record := db.Vote{
		ID:            vote.ID,
		PollID:        vote.PollID,
		VoterFid:      vote.VoterFid,
		VoterUsername: vote.VoterUsername,
		VoterAvatar:   vote.VoterAvatar,
		OptionID:      vote.OptionID,
		Prediction:    vote.Prediction,
		Reaction:      vote.Reaction,
		CreatedAt:     vote.CreatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		// A concurrent double-submit can lose the archive race after
		// winning the store one; the store already kept exactly one.
		if !isUniqueViolation(err) {
			return err
		}
	}
	if err := s.db.Model(&db.Poll{}).Where("id = ?", vote.PollID).
		Update("total_votes", s.db.Table("votes").Where("poll_id = ?", vote.PollID).Select("count(*)")).Error; err != nil {
		return err
	}
	return s.archiveEvent("vote_cast", &vote.PollID, EventPayload{
		PollID:   vote.PollID,
		VoteID:   vote.ID,
		VoterFid: vote.VoterFid,
		OptionID: vote.OptionID,
	})
}

func (s *Server) archiveOnchainTx(poll Poll) error {
	if s.db == nil {
		return nil
	}
	updates := map[string]any{
		"is_onchain": true,
		"onchain_tx": poll.OnchainTx,
	}
	if err := s.db.Model(&db.Poll{}).Where("id = ?", poll.ID).Updates(updates).Error; err != nil {
		return err
	}
	return s.archiveEvent("poll_anchored", &poll.ID, EventPayload{
		PollID: poll.ID,
		TxHash: poll.OnchainTx,
	})
}

func (s *Server) archiveDailyQuestion(question DailyQuestion) error {
	if s.db == nil {
		return nil
	}
	options, err := json.Marshal(question.Options)
	if err != nil {
		return err
	}
	record := db.DailyQuestion{
		ID:         question.ID,
		ActiveDate: question.ActiveDate,
		Question:   question.Question,
		Options:    datatypes.JSON(options),
		CreatedAt:  question.CreatedAt,
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}

func (s *Server) archiveDailyVote(vote Vote, streak Streak) error {
	if s.db == nil {
		return nil
	}
	record := db.DailyVote{
		ID:            vote.ID,
		QuestionID:    vote.PollID,
		VoterFid:      vote.VoterFid,
		VoterUsername: vote.VoterUsername,
		VoterAvatar:   vote.VoterAvatar,
		OptionID:      vote.OptionID,
		CreatedAt:     vote.CreatedAt,
	}
	if err := s.db.Create(&record).Error; err != nil && !isUniqueViolation(err) {
		return err
	}
	streakRecord := db.Streak{
		VoterFid:     streak.Fid,
		Current:      streak.Current,
		Best:         streak.Best,
		LastVoteDate: streak.LastVoteDate,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "voter_fid"}},
		DoUpdates: clause.AssignmentColumns([]string{"current", "best", "last_vote_date", "updated_at"}),
	}).Create(&streakRecord).Error; err != nil {
		return err
	}
	return s.archiveEvent("daily_vote_cast", nil, EventPayload{
		VoteID:   vote.ID,
		VoterFid: vote.VoterFid,
		OptionID: vote.OptionID,
		Streak:   streak.Current,
	})
}

func (s *Server) archiveEvent(eventType string, pollID *string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		PollID:  pollID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
