// Package topics holds the topic taxonomy and each user's topic and subtopic
// selections.
package topics

import (
	"slices"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
)

type SubTopic struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	TopicID int    `json:"topicId"`
}

// Topic is a top-level category. SubTopics is never nil in catalog reads.
type Topic struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	SubTopics []SubTopic `json:"subTopics"`
}

type UserTopic struct {
	UserID  int64 `json:"userId"`
	TopicID int   `json:"topicId"`
}

type UserSubTopic struct {
	UserID     int64 `json:"userId"`
	SubTopicID int   `json:"subTopicId"`
}

// Preferences is what a user picked, resolved to catalog entries.
type Preferences struct {
	Topics    []Topic    `json:"topics"`
	SubTopics []SubTopic `json:"subtopics"`
}

// NormalizeIDs sorts and de-duplicates ids and rejects non-positive values.
// A nil or empty input yields an empty selection.
func NormalizeIDs(ids []int) ([]int, error) {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, apperrors.Kindf(apperrors.ErrBadRequest, nil, "invalid id %d", id)
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
