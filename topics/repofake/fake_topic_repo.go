package topicrepofake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/topics"
)

var _ topics.Repo = (*FakeTopicRepo)(nil)

type FakeTopicRepo struct {
	catalog      []topics.Topic
	userTopics   map[int64][]int
	userSubTopic map[int64][]int
	lock         sync.RWMutex

	// CatalogReads counts ListAll and GetBySlug calls.
	CatalogReads int
	// Err, when set, is returned by every call.
	Err error
}

// NewFakeTopicRepo returns a repo over catalog, or over SampleCatalog when
// none is given.
func NewFakeTopicRepo(catalog ...topics.Topic) *FakeTopicRepo {
	if len(catalog) == 0 {
		catalog = SampleCatalog()
	}
	return &FakeTopicRepo{
		catalog:      catalog,
		userTopics:   make(map[int64][]int),
		userSubTopic: make(map[int64][]int),
	}
}

func SampleCatalog() []topics.Topic {
	return []topics.Topic{
		{ID: 1, Name: "Technology", Slug: "technology", SubTopics: []topics.SubTopic{
			{ID: 1, Name: "Artificial Intelligence", Slug: "ai", TopicID: 1},
			{ID: 2, Name: "Cybersecurity", Slug: "cybersecurity", TopicID: 1},
		}},
		{ID: 2, Name: "Science", Slug: "science", SubTopics: []topics.SubTopic{
			{ID: 3, Name: "Space", Slug: "space", TopicID: 2},
		}},
		{ID: 3, Name: "Sports", Slug: "sports", SubTopics: []topics.SubTopic{}},
	}
}

func (tr *FakeTopicRepo) ListAll(_ context.Context) ([]topics.Topic, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.CatalogReads++
	if tr.Err != nil {
		return nil, tr.Err
	}
	out := make([]topics.Topic, len(tr.catalog))
	copy(out, tr.catalog)
	return out, nil
}

func (tr *FakeTopicRepo) GetBySlug(_ context.Context, slug string) (*topics.Topic, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.CatalogReads++
	if tr.Err != nil {
		return nil, tr.Err
	}
	for _, t := range tr.catalog {
		if t.Slug == slug {
			found := t
			return &found, nil
		}
	}
	return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "topic %s", slug)
}

func (tr *FakeTopicRepo) ReplaceUserTopics(_ context.Context, userID int64, topicIDs []int) (int, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.Err != nil {
		return 0, tr.Err
	}
	for _, id := range topicIDs {
		if _, ok := tr.topicByID(id); !ok {
			return 0, apperrors.Kindf(apperrors.ErrBadRequest, nil, "unknown topic id %d", id)
		}
	}
	tr.userTopics[userID] = append([]int(nil), topicIDs...)
	return len(topicIDs), nil
}

func (tr *FakeTopicRepo) ReplaceUserSubTopics(_ context.Context, userID int64, subTopicIDs []int) (int, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if tr.Err != nil {
		return 0, tr.Err
	}
	for _, id := range subTopicIDs {
		if _, ok := tr.subTopicByID(id); !ok {
			return 0, apperrors.Kindf(apperrors.ErrBadRequest, nil, "unknown subtopic id %d", id)
		}
	}
	tr.userSubTopic[userID] = append([]int(nil), subTopicIDs...)
	return len(subTopicIDs), nil
}

func (tr *FakeTopicRepo) UserPreferences(_ context.Context, userID int64) (*topics.Preferences, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	if tr.Err != nil {
		return nil, tr.Err
	}
	prefs := &topics.Preferences{Topics: []topics.Topic{}, SubTopics: []topics.SubTopic{}}
	for _, id := range tr.userTopics[userID] {
		t, _ := tr.topicByID(id)
		t.SubTopics = []topics.SubTopic{}
		prefs.Topics = append(prefs.Topics, t)
	}
	for _, id := range tr.userSubTopic[userID] {
		s, _ := tr.subTopicByID(id)
		prefs.SubTopics = append(prefs.SubTopics, s)
	}
	return prefs, nil
}

func (tr *FakeTopicRepo) UserSelections(_ context.Context, userID int64) ([]topics.UserTopic, []topics.UserSubTopic, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	if tr.Err != nil {
		return nil, nil, tr.Err
	}
	ut := make([]topics.UserTopic, 0, len(tr.userTopics[userID]))
	for _, id := range tr.userTopics[userID] {
		ut = append(ut, topics.UserTopic{UserID: userID, TopicID: id})
	}
	ust := make([]topics.UserSubTopic, 0, len(tr.userSubTopic[userID]))
	for _, id := range tr.userSubTopic[userID] {
		ust = append(ust, topics.UserSubTopic{UserID: userID, SubTopicID: id})
	}
	return ut, ust, nil
}

func (tr *FakeTopicRepo) topicByID(id int) (topics.Topic, bool) {
	for _, t := range tr.catalog {
		if t.ID == id {
			return t, true
		}
	}
	return topics.Topic{}, false
}

func (tr *FakeTopicRepo) subTopicByID(id int) (topics.SubTopic, bool) {
	for _, t := range tr.catalog {
		for _, s := range t.SubTopics {
			if s.ID == id {
				return s, true
			}
		}
	}
	return topics.SubTopic{}, false
}
