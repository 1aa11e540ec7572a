package server

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minQuestionLength = 3
	maxQuestionLength = 200
	maxOptionLength   = 100
	maxReactionLength = 80
	minOptionsPerPoll = 2
	maxOptionsPerPoll = 5
)

func validateQuestion(text string) (string, error) {
	trimmed := normalizeText(text)
	if len(trimmed) < minQuestionLength {
		return "", fmt.Errorf("question must be at least %d characters", minQuestionLength)
	}
	if len(trimmed) > maxQuestionLength {
		return "", fmt.Errorf("question must be %d characters or fewer", maxQuestionLength)
	}
	return trimmed, nil
}

func validatePollType(pollType string) (string, error) {
	if pollType == "" {
		return pollTypeStandard, nil
	}
	switch pollType {
	case pollTypeStandard, pollTypeImage, pollTypeThisOrThat, pollTypeRating:
		return pollType, nil
	}
	return "", fmt.Errorf("unknown poll type %q", pollType)
}

// validateOptions checks the per-type option count rules. Rating polls
// ignore caller options entirely; the store generates the star levels.
func validateOptions(pollType string, options []Option) ([]Option, error) {
	if pollType == pollTypeRating {
		return nil, nil
	}
	if pollType == pollTypeThisOrThat && len(options) != 2 {
		return nil, errors.New("this_or_that polls need exactly 2 options")
	}
	if len(options) < minOptionsPerPoll {
		return nil, fmt.Errorf("polls need at least %d options", minOptionsPerPoll)
	}
	if len(options) > maxOptionsPerPoll {
		return nil, fmt.Errorf("polls allow at most %d options", maxOptionsPerPoll)
	}

	out := make([]Option, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for i, option := range options {
		text := normalizeText(option.Text)
		if text == "" {
			return nil, fmt.Errorf("option %d text is required", i+1)
		}
		if len(text) > maxOptionLength {
			return nil, fmt.Errorf("option %d must be %d characters or fewer", i+1, maxOptionLength)
		}
		if option.ID != "" {
			if _, dup := seen[option.ID]; dup {
				return nil, fmt.Errorf("duplicate option id %q", option.ID)
			}
			seen[option.ID] = struct{}{}
		}
		out = append(out, Option{ID: option.ID, Text: text, ImageURL: strings.TrimSpace(option.ImageURL)})
	}
	return out, nil
}

func validateReaction(text string) (string, error) {
	trimmed := normalizeText(text)
	if len(trimmed) > maxReactionLength {
		return "", fmt.Errorf("reaction must be %d characters or fewer", maxReactionLength)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
