package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type createPollOption struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

type createPollRequest struct {
	CreatorFid      int64              `json:"creator_fid" binding:"required"`
	CreatorUsername string             `json:"creator_username" binding:"required"`
	CreatorAvatar   string             `json:"creator_avatar"`
	Question        string             `json:"question" binding:"required"`
	PollType        string             `json:"poll_type"`
	Options         []createPollOption `json:"options"`
	IsAnonymous     bool               `json:"is_anonymous"`
	IsPrediction    bool               `json:"is_prediction"`
	IsOnchain       bool               `json:"is_onchain"`
	ExpiresAt       *time.Time         `json:"expires_at"`
}

var createPollMessages = bindMessages{
	"CreatorFid":      {"required": "creator_fid is required"},
	"CreatorUsername": {"required": "creator_username is required"},
	"Question":        {"required": "question is required"},
}

func (s *Server) handleCreatePoll(c *gin.Context) {
	var req createPollRequest
	if !bindJSON(c, &req, createPollMessages, "invalid poll body") {
		return
	}

	question, err := validateQuestion(req.Question)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pollType, err := validatePollType(req.PollType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	options := make([]Option, 0, len(req.Options))
	for _, option := range req.Options {
		options = append(options, Option{ID: option.ID, Text: option.Text, ImageURL: option.ImageURL})
	}
	options, err = validateOptions(pollType, options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	poll := s.store.CreatePoll(CreatePollInput{
		CreatorFid:      req.CreatorFid,
		CreatorUsername: req.CreatorUsername,
		CreatorAvatar:   req.CreatorAvatar,
		Question:        question,
		PollType:        pollType,
		Options:         options,
		IsAnonymous:     req.IsAnonymous,
		IsPrediction:    req.IsPrediction,
		IsOnchain:       req.IsOnchain,
		ExpiresAt:       req.ExpiresAt,
	})
	if err := s.archivePoll(poll); err != nil {
		s.log.Warn("poll archive failed", "poll_id", poll.ID, "error", err)
	}
	s.log.Info("poll created", "poll_id", poll.ID, "creator_fid", poll.CreatorFid, "poll_type", poll.PollType)

	c.JSON(http.StatusCreated, gin.H{
		"poll":    poll,
		"poll_id": poll.ID,
	})
}

func (s *Server) handleListPolls(c *gin.Context) {
	viewerFid := parseFid(c)
	limit := parseLimit(c, s.cfg.FeedPageSize, s.cfg.FeedMaxPageSize)

	if trending := strings.TrimSpace(c.Query("trending")); trending == "true" || trending == "1" {
		polls := s.store.Trending(limit)
		c.JSON(http.StatusOK, gin.H{
			"polls":       s.enrichAll(polls, viewerFid),
			"next_cursor": nil,
		})
		return
	}

	cursor, err := parseCursor(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page := s.store.FeedPage(cursor, limit)
	resp := gin.H{"polls": s.enrichAll(page.Polls, viewerFid)}
	if page.NextCursor != "" {
		resp["next_cursor"] = page.NextCursor
	} else {
		resp["next_cursor"] = nil
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) enrichAll(polls []Poll, viewerFid int64) []EnrichedPoll {
	enriched := make([]EnrichedPoll, 0, len(polls))
	for _, poll := range polls {
		entry, err := s.store.EnrichPoll(poll.ID, viewerFid)
		if err != nil {
			continue
		}
		enriched = append(enriched, entry)
	}
	return enriched
}

func (s *Server) handleGetPoll(c *gin.Context) {
	poll, err := s.store.EnrichPoll(c.Param("id"), parseFid(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
		return
	}
	c.JSON(http.StatusOK, poll)
}

type castVoteRequest struct {
	PollID        string `json:"poll_id" binding:"required"`
	VoterFid      int64  `json:"voter_fid" binding:"required"`
	VoterUsername string `json:"voter_username" binding:"required"`
	VoterAvatar   string `json:"voter_avatar"`
	OptionID      string `json:"option_id" binding:"required"`
	Prediction    string `json:"prediction"`
	Reaction      string `json:"reaction"`
}

var castVoteMessages = bindMessages{
	"PollID":        {"required": "poll_id is required"},
	"VoterFid":      {"required": "voter_fid is required"},
	"VoterUsername": {"required": "voter_username is required"},
	"OptionID":      {"required": "option_id is required"},
}

func (s *Server) handleCastVote(c *gin.Context) {
	var req castVoteRequest
	if !bindJSON(c, &req, castVoteMessages, "invalid vote body") {
		return
	}
	reaction, err := validateReaction(req.Reaction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := s.store.CreateVote(CreateVoteInput{
		PollID:        req.PollID,
		VoterFid:      req.VoterFid,
		VoterUsername: req.VoterUsername,
		VoterAvatar:   req.VoterAvatar,
		OptionID:      req.OptionID,
		Prediction:    req.Prediction,
		Reaction:      reaction,
	})
	switch {
	case errors.Is(err, ErrPollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
		return
	case errors.Is(err, ErrPollExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "poll has expired"})
		return
	case errors.Is(err, ErrOptionNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown option"})
		return
	case errors.Is(err, ErrDuplicateVote):
		c.JSON(http.StatusConflict, gin.H{"error": "already voted on this poll"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record vote"})
		return
	}

	if err := s.archiveVote(vote); err != nil {
		s.log.Warn("vote archive failed", "vote_id", vote.ID, "error", err)
	}
	poll, _ := s.store.GetPoll(vote.PollID)
	counts, _ := s.store.VoteCounts(vote.PollID)
	s.log.Info("vote recorded", "poll_id", vote.PollID, "voter_fid", vote.VoterFid)

	if poll.CreatorFid != vote.VoterFid {
		voterName := vote.VoterUsername
		if poll.IsAnonymous {
			voterName = anonymousName
		}
		s.notify(Notification{
			RecipientFid: poll.CreatorFid,
			Title:        "New vote on your poll",
			Body:         fmt.Sprintf("%s voted on %q", voterName, poll.Question),
			PollID:       poll.ID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"vote":        vote,
		"vote_counts": counts,
		"total_votes": poll.TotalVotes,
	})
}

func (s *Server) handleVoters(c *gin.Context) {
	pollID := c.Param("id")
	voters, err := s.store.Voters(pollID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
		return
	}

	resp := gin.H{"voters": voters}
	wantBreakdown := c.Query("breakdown") == "true" || c.Query("breakdown") == "1"
	if wantBreakdown {
		breakdown, err := s.networkBreakdown(c.Request.Context(), pollID, parseFid(c))
		switch {
		case errors.Is(err, ErrNotEnoughVotes):
			resp["breakdown"] = nil
			resp["insufficient_data"] = true
		case errors.Is(err, ErrGraphUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "follow graph unavailable"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "breakdown failed"})
			return
		default:
			resp["breakdown"] = breakdown
		}
	}
	c.JSON(http.StatusOK, resp)
}

type saveOnchainRequest struct {
	TxHash string `json:"tx_hash"`
}

// handleSaveOnchain anchors a poll's results. The client either brings
// its own wallet-signed tx hash or, when a relay is configured, the
// server hashes the current tallies and submits them itself.
func (s *Server) handleSaveOnchain(c *gin.Context) {
	pollID := c.Param("id")
	var req saveOnchainRequest
	if !bindJSON(c, &req, nil, "invalid body") {
		return
	}

	txHash := strings.TrimSpace(req.TxHash)
	if txHash == "" {
		if s.anchor == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tx_hash is required"})
			return
		}
		counts, err := s.store.VoteCounts(pollID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
			return
		}
		txHash, err = s.anchor.Submit(c.Request.Context(), pollID, resultsHash(pollID, counts))
		if err != nil {
			s.log.Warn("ledger submit failed", "poll_id", pollID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "ledger unavailable"})
			return
		}
	}

	poll, err := s.store.SetOnchainTx(pollID, txHash)
	switch {
	case errors.Is(err, ErrPollNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "poll not found"})
		return
	case errors.Is(err, ErrAlreadyAnchored):
		c.JSON(http.StatusConflict, gin.H{"error": "poll already saved onchain"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save onchain tx"})
		return
	}

	if err := s.archiveOnchainTx(poll); err != nil {
		s.log.Warn("onchain tx archive failed", "poll_id", poll.ID, "error", err)
	}
	s.log.Info("poll anchored", "poll_id", poll.ID, "tx_hash", poll.OnchainTx)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"onchain_tx": poll.OnchainTx,
	})
}

func (s *Server) handleGetDaily(c *gin.Context) {
	today := dateKey(s.store.now())
	question := s.store.EnsureDailyQuestion(today)
	if err := s.archiveDailyQuestion(question); err != nil {
		s.log.Warn("daily question archive failed", "question_id", question.ID, "error", err)
	}

	resp := gin.H{"question": question}
	if fid := parseFid(c); fid != 0 {
		resp["streak"] = s.store.StreakFor(fid)
		if vote, voted := s.store.DailyVoteFor(today, fid); voted {
			resp["user_voted_option_id"] = vote.OptionID
		}
	}
	if result, ok := s.store.YesterdayResult(); ok {
		resp["yesterday"] = result
	}
	c.JSON(http.StatusOK, resp)
}

type dailyVoteRequest struct {
	VoterFid      int64  `json:"voter_fid" binding:"required"`
	VoterUsername string `json:"voter_username" binding:"required"`
	VoterAvatar   string `json:"voter_avatar"`
	OptionID      string `json:"option_id" binding:"required"`
}

var dailyVoteMessages = bindMessages{
	"VoterFid":      {"required": "voter_fid is required"},
	"VoterUsername": {"required": "voter_username is required"},
	"OptionID":      {"required": "option_id is required"},
}

func (s *Server) handleDailyVote(c *gin.Context) {
	var req dailyVoteRequest
	if !bindJSON(c, &req, dailyVoteMessages, "invalid vote body") {
		return
	}

	vote, streak, err := s.store.CreateDailyVote(CreateDailyVoteInput{
		VoterFid:      req.VoterFid,
		VoterUsername: req.VoterUsername,
		VoterAvatar:   req.VoterAvatar,
		OptionID:      req.OptionID,
	})
	switch {
	case errors.Is(err, ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no daily question today"})
		return
	case errors.Is(err, ErrOptionNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown option"})
		return
	case errors.Is(err, ErrDuplicateVote):
		c.JSON(http.StatusConflict, gin.H{"error": "already answered today"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record vote"})
		return
	}

	if err := s.archiveDailyVote(vote, streak); err != nil {
		s.log.Warn("daily vote archive failed", "vote_id", vote.ID, "error", err)
	}
	s.log.Info("daily vote recorded", "voter_fid", vote.VoterFid, "streak", streak.Current)

	c.JSON(http.StatusCreated, gin.H{
		"vote":   vote,
		"streak": streak,
	})
}
