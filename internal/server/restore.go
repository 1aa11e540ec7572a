package server

import (
	"encoding/json"
	"fmt"

	"pollcast/internal/db"
)

// RestoreFromArchive rebuilds the in-memory store from the database.
// Polls load oldest first so head insertion recreates feed order, and
// totals are recounted from vote rows rather than trusting the
// archived counters.
func (s *Server) RestoreFromArchive() error {
	if s.db == nil {
		return nil
	}

	var polls []db.Poll
	if err := s.db.Order("created_at asc").Find(&polls).Error; err != nil {
		return fmt.Errorf("load polls: %w", err)
	}
	for _, record := range polls {
		poll, err := pollFromRecord(record)
		if err != nil {
			return fmt.Errorf("poll %s: %w", record.ID, err)
		}
		s.store.RestorePoll(poll)
	}

	var votes []db.Vote
	if err := s.db.Order("created_at asc").Find(&votes).Error; err != nil {
		return fmt.Errorf("load votes: %w", err)
	}
	for _, record := range votes {
		err := s.store.RestoreVote(Vote{
			ID:            record.ID,
			PollID:        record.PollID,
			VoterFid:      record.VoterFid,
			VoterUsername: record.VoterUsername,
			VoterAvatar:   record.VoterAvatar,
			OptionID:      record.OptionID,
			Prediction:    record.Prediction,
			Reaction:      record.Reaction,
			CreatedAt:     record.CreatedAt,
		})
		if err != nil {
			s.log.Warn("skipping archived vote", "vote_id", record.ID, "error", err)
		}
	}

	var streaks []db.Streak
	if err := s.db.Find(&streaks).Error; err != nil {
		return fmt.Errorf("load streaks: %w", err)
	}
	restoredStreaks := make([]Streak, 0, len(streaks))
	for _, record := range streaks {
		restoredStreaks = append(restoredStreaks, Streak{
			Fid:          record.VoterFid,
			Current:      record.Current,
			Best:         record.Best,
			LastVoteDate: record.LastVoteDate,
		})
	}
	s.store.RestoreStreaks(restoredStreaks)

	var questions []db.DailyQuestion
	if err := s.db.Order("created_at asc").Find(&questions).Error; err != nil {
		return fmt.Errorf("load daily questions: %w", err)
	}
	for _, record := range questions {
		var options []Option
		if err := json.Unmarshal(record.Options, &options); err != nil {
			return fmt.Errorf("daily question %s: %w", record.ID, err)
		}
		var dailyVotes []db.DailyVote
		if err := s.db.Where("question_id = ?", record.ID).Order("created_at asc").Find(&dailyVotes).Error; err != nil {
			return fmt.Errorf("load daily votes: %w", err)
		}
		restored := make([]Vote, 0, len(dailyVotes))
		for _, voteRecord := range dailyVotes {
			restored = append(restored, Vote{
				ID:            voteRecord.ID,
				PollID:        voteRecord.QuestionID,
				VoterFid:      voteRecord.VoterFid,
				VoterUsername: voteRecord.VoterUsername,
				VoterAvatar:   voteRecord.VoterAvatar,
				OptionID:      voteRecord.OptionID,
				CreatedAt:     voteRecord.CreatedAt,
			})
		}
		s.store.RestoreDailyState(DailyQuestion{
			ID:         record.ID,
			ActiveDate: record.ActiveDate,
			Question:   record.Question,
			Options:    options,
			CreatedAt:  record.CreatedAt,
		}, restored)
	}

	s.log.Info("store restored from archive",
		"polls", len(polls), "votes", len(votes), "daily_questions", len(questions))
	return nil
}

func pollFromRecord(record db.Poll) (Poll, error) {
	var options []Option
	if err := json.Unmarshal(record.Options, &options); err != nil {
		return Poll{}, err
	}
	return Poll{
		ID:              record.ID,
		CreatorFid:      record.CreatorFid,
		CreatorUsername: record.CreatorUsername,
		CreatorAvatar:   record.CreatorAvatar,
		Question:        record.Question,
		PollType:        record.PollType,
		Options:         options,
		IsAnonymous:     record.IsAnonymous,
		IsPrediction:    record.IsPrediction,
		IsOnchain:       record.IsOnchain,
		OnchainTx:       record.OnchainTx,
		ExpiresAt:       record.ExpiresAt,
		CreatedAt:       record.CreatedAt,
	}, nil
}
