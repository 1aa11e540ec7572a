package server

import "sort"

type FeedResult struct {
	Polls      []Poll
	NextCursor string
}

// FeedPage returns one reverse-chronological page. The cursor marks
// the feed position of the last item the caller saw; only polls
// strictly after it in sort order are returned. NextCursor is empty
// on the last page.
func (s *Store) FeedPage(cursor *feedCursor, limit int) FeedResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := make([]*Poll, len(s.polls))
	copy(ordered, s.polls)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].seq > ordered[j].seq
	})

	if cursor != nil {
		older := ordered[:0]
		for _, poll := range ordered {
			if poll.CreatedAt.Before(cursor.at) ||
				(poll.CreatedAt.Equal(cursor.at) && poll.seq < cursor.seq) {
				older = append(older, poll)
			}
		}
		ordered = older
	}

	page := FeedResult{}
	if limit <= 0 || limit > len(ordered) {
		limit = len(ordered)
	} else if limit < len(ordered) {
		last := ordered[limit-1]
		page.NextCursor = formatCursor(last.CreatedAt, last.seq)
	}
	page.Polls = make([]Poll, 0, limit)
	for _, poll := range ordered[:limit] {
		page.Polls = append(page.Polls, clonePoll(poll))
	}
	return page
}

// Trending orders polls by total votes, newest first among ties. A
// year-old poll with the most votes ranks first forever; there is no
// recency decay.
func (s *Store) Trending(limit int) []Poll {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := make([]*Poll, len(s.polls))
	copy(ordered, s.polls)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TotalVotes != ordered[j].TotalVotes {
			return ordered[i].TotalVotes > ordered[j].TotalVotes
		}
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].seq > ordered[j].seq
	})

	if limit > 0 && limit < len(ordered) {
		ordered = ordered[:limit]
	}
	list := make([]Poll, 0, len(ordered))
	for _, poll := range ordered {
		list = append(list, clonePoll(poll))
	}
	return list
}
