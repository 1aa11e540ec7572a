package server

import (
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Built-in daily question rotation. The question for a date is picked
// by day index so every instance agrees without coordination.
var dailyRotation = []struct {
	question string
	options  []string
}{
	{"Coffee or tea to start the day?", []string{"Coffee", "Tea"}},
	{"Would you rather ship on Friday or Monday?", []string{"Friday", "Monday"}},
	{"Is a hot dog a sandwich?", []string{"Yes", "No"}},
	{"Best time to be online?", []string{"Morning", "Afternoon", "Late night"}},
	{"Tabs or spaces?", []string{"Tabs", "Spaces"}},
	{"Would you take a one-way trip to Mars?", []string{"Yes", "No"}},
	{"Pineapple on pizza?", []string{"Always", "Never", "Sometimes"}},
}

type CreateDailyVoteInput struct {
	VoterFid      int64
	VoterUsername string
	VoterAvatar   string
	OptionID      string
}

type DailyResult struct {
	Question string  `json:"question"`
	OptionID string  `json:"option_id"`
	Text     string  `json:"text"`
	Votes    int     `json:"votes"`
	Percent  float64 `json:"percent"`
}

func (s *Store) DailyForDate(date string) (DailyQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.dailies[date]
	if !ok {
		return DailyQuestion{}, false
	}
	return cloneDaily(question), true
}

// EnsureDailyQuestion returns the question for a date, creating it from
// the rotation on first access.
func (s *Store) EnsureDailyQuestion(date string) DailyQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if question, ok := s.dailies[date]; ok {
		return cloneDaily(question)
	}
	return cloneDaily(s.insertDailyLocked(date))
}

// SetDailyQuestion registers a question for a date, replacing the
// rotation pick. No-op when votes were already cast for that date.
func (s *Store) SetDailyQuestion(date, question string, options []Option) DailyQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.dailies[date]; ok && existing.TotalVotes > 0 {
		return cloneDaily(existing)
	}
	entry := &DailyQuestion{
		ID:         uuid.NewString(),
		ActiveDate: date,
		Question:   question,
		Options:    normalizeOptions(pollTypeStandard, options),
		CreatedAt:  s.now(),
	}
	s.dailies[date] = entry
	return cloneDaily(entry)
}

func (s *Store) insertDailyLocked(date string) *DailyQuestion {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		day = s.now()
	}
	pick := dailyRotation[int(day.Unix()/86400)%len(dailyRotation)]
	options := make([]Option, len(pick.options))
	for i, text := range pick.options {
		options[i] = Option{Text: text}
	}
	entry := &DailyQuestion{
		ID:         uuid.NewString(),
		ActiveDate: date,
		Question:   pick.question,
		Options:    normalizeOptions(pollTypeStandard, options),
		CreatedAt:  s.now(),
	}
	s.dailies[date] = entry
	return entry
}

// CreateDailyVote records today's answer and advances the streak state
// machine: yesterday answered means increment, today already answered
// is a conflict, anything else resets to 1.
func (s *Store) CreateDailyVote(input CreateDailyVoteInput) (Vote, Streak, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := dateKey(s.now())
	question, ok := s.dailies[today]
	if !ok {
		question = s.insertDailyLocked(today)
	}
	if !hasOption(question.Options, input.OptionID) {
		return Vote{}, Streak{}, ErrOptionNotFound
	}
	key := voteKey{scopeID: question.ID, fid: input.VoterFid}
	if _, dup := s.dailyVoted[key]; dup {
		return Vote{}, Streak{}, ErrDuplicateVote
	}

	vote := &Vote{
		ID:            uuid.NewString(),
		PollID:        question.ID,
		VoterFid:      input.VoterFid,
		VoterUsername: input.VoterUsername,
		VoterAvatar:   input.VoterAvatar,
		OptionID:      input.OptionID,
		CreatedAt:     s.now(),
	}
	s.dailyVotes[question.ID] = append(s.dailyVotes[question.ID], vote)
	s.dailyVoted[key] = vote
	question.TotalVotes++

	streak := s.streaks[input.VoterFid]
	if streak == nil {
		streak = &Streak{Fid: input.VoterFid}
		s.streaks[input.VoterFid] = streak
	}
	if streak.LastVoteDate == today {
		// Unreachable while dailyVoted is checked first.
		return Vote{}, Streak{}, ErrDuplicateVote
	}
	if streak.LastVoteDate == prevDateKey(today) {
		streak.Current++
	} else {
		streak.Current = 1
	}
	if streak.Current > streak.Best {
		streak.Best = streak.Current
	}
	streak.LastVoteDate = today

	return *vote, *streak, nil
}

func (s *Store) StreakFor(fid int64) Streak {
	s.mu.Lock()
	defer s.mu.Unlock()
	if streak, ok := s.streaks[fid]; ok {
		return *streak
	}
	return Streak{Fid: fid}
}

func (s *Store) DailyVoteFor(date string, fid int64) (Vote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.dailies[date]
	if !ok {
		return Vote{}, false
	}
	vote, ok := s.dailyVoted[voteKey{scopeID: question.ID, fid: fid}]
	if !ok {
		return Vote{}, false
	}
	return *vote, true
}

// YesterdayResult reports the winning option of the previous calendar
// day's question, or ok=false when there is none or nobody voted.
func (s *Store) YesterdayResult() (DailyResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	yesterday := prevDateKey(dateKey(s.now()))
	question, ok := s.dailies[yesterday]
	if !ok || question.TotalVotes == 0 {
		return DailyResult{}, false
	}

	counts := make(map[string]int)
	for _, vote := range s.dailyVotes[question.ID] {
		counts[vote.OptionID]++
	}
	winner := leadingOption(question.Options, counts)
	text := ""
	for _, option := range question.Options {
		if option.ID == winner {
			text = option.Text
		}
	}
	return DailyResult{
		Question: question.Question,
		OptionID: winner,
		Text:     text,
		Votes:    counts[winner],
		Percent:  float64(counts[winner]) * 100 / float64(question.TotalVotes),
	}, true
}

// RestoreDailyState reloads an archived question with its votes,
// recounting the tally from the vote rows.
func (s *Store) RestoreDailyState(question DailyQuestion, votes []Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := question
	restored.Options = append([]Option(nil), question.Options...)
	restored.TotalVotes = 0
	s.dailies[restored.ActiveDate] = &restored
	for _, vote := range votes {
		key := voteKey{scopeID: restored.ID, fid: vote.VoterFid}
		if _, dup := s.dailyVoted[key]; dup {
			continue
		}
		entry := vote
		s.dailyVotes[restored.ID] = append(s.dailyVotes[restored.ID], &entry)
		s.dailyVoted[key] = &entry
		restored.TotalVotes++
	}
}

func (s *Store) RestoreStreaks(streaks []Streak) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, streak := range streaks {
		entry := streak
		s.streaks[entry.Fid] = &entry
	}
}

func cloneDaily(question *DailyQuestion) DailyQuestion {
	out := *question
	out.Options = append([]Option(nil), question.Options...)
	return out
}

func dateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func prevDateKey(date string) string {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return day.AddDate(0, 0, -1).Format(dateLayout)
}
