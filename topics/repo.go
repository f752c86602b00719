package topics

import "context"

// Repo reads the catalog and replaces a user's selections. Replace methods
// swap the whole selection atomically and fail with errors.ErrBadRequest when
// an id does not exist.
type Repo interface {
	ListAll(ctx context.Context) ([]Topic, error)
	GetBySlug(ctx context.Context, slug string) (*Topic, error)
	ReplaceUserTopics(ctx context.Context, userID int64, topicIDs []int) (int, error)
	ReplaceUserSubTopics(ctx context.Context, userID int64, subTopicIDs []int) (int, error)
	UserPreferences(ctx context.Context, userID int64) (*Preferences, error)
	UserSelections(ctx context.Context, userID int64) ([]UserTopic, []UserSubTopic, error)
}
