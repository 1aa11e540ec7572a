package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Cursors encode the feed sort position of the last item seen: its
// created_at in unix nanoseconds plus the insertion sequence, so polls
// sharing a timestamp still paginate without loss. Opaque to clients;
// they only ever echo back next_cursor.

type feedCursor struct {
	at  time.Time
	seq int64
}

func formatCursor(at time.Time, seq int64) string {
	return strconv.FormatInt(at.UnixNano(), 10) + "-" + strconv.FormatInt(seq, 10)
}

func parseCursor(raw string) (*feedCursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	nanosPart, seqPart, ok := strings.Cut(raw, "-")
	if !ok {
		return nil, errors.New("invalid cursor")
	}
	nanos, err := strconv.ParseInt(nanosPart, 10, 64)
	if err != nil {
		return nil, errors.New("invalid cursor")
	}
	seq, err := strconv.ParseInt(seqPart, 10, 64)
	if err != nil {
		return nil, errors.New("invalid cursor")
	}
	return &feedCursor{at: time.Unix(0, nanos).UTC(), seq: seq}, nil
}

func parseLimit(c *gin.Context, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			limit = value
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func parseFid(c *gin.Context) int64 {
	raw := strings.TrimSpace(c.Query("fid"))
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
