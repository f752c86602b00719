// Package topicrepopg reads the topic catalog and writes user selections in
// Postgres.
package topicrepopg

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/infonow-server/internal/db"
	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/jrsteele09/infonow-server/topics"
)

var _ topics.Repo = (*TopicRepo)(nil)

const catalogQuery = `
	SELECT t.id, t.name, t.slug, s.id, s.name, s.slug
	FROM topics t
	LEFT JOIN sub_topics s ON s.topic_id = t.id`

type TopicRepo struct {
	db *sql.DB
}

func New(conn *sql.DB) *TopicRepo {
	return &TopicRepo{db: conn}
}

func (r *TopicRepo) ListAll(ctx context.Context) ([]topics.Topic, error) {
	list, err := r.queryCatalog(ctx, catalogQuery+` ORDER BY t.id, s.id`)
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "list topics")
	}
	return list, nil
}

func (r *TopicRepo) GetBySlug(ctx context.Context, slug string) (*topics.Topic, error) {
	list, err := r.queryCatalog(ctx, catalogQuery+` WHERE t.slug = $1 ORDER BY s.id`, slug)
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "get topic %s", slug)
	}
	if len(list) == 0 {
		return nil, apperrors.Kindf(apperrors.ErrNotFound, nil, "topic %s", slug)
	}
	return &list[0], nil
}

func (r *TopicRepo) ReplaceUserTopics(ctx context.Context, userID int64, topicIDs []int) (int, error) {
	return r.replace(ctx, userID, topicIDs,
		`DELETE FROM user_topics WHERE user_id = $1`,
		`INSERT INTO user_topics (user_id, topic_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		"topic")
}

func (r *TopicRepo) ReplaceUserSubTopics(ctx context.Context, userID int64, subTopicIDs []int) (int, error) {
	return r.replace(ctx, userID, subTopicIDs,
		`DELETE FROM user_sub_topics WHERE user_id = $1`,
		`INSERT INTO user_sub_topics (user_id, sub_topic_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		"subtopic")
}

func (r *TopicRepo) UserPreferences(ctx context.Context, userID int64) (*topics.Preferences, error) {
	const topicsQuery = `
		SELECT t.id, t.name, t.slug
		FROM user_topics ut
		JOIN topics t ON t.id = ut.topic_id
		WHERE ut.user_id = $1
		ORDER BY t.id`
	const subTopicsQuery = `
		SELECT s.id, s.name, s.slug, s.topic_id
		FROM user_sub_topics us
		JOIN sub_topics s ON s.id = us.sub_topic_id
		WHERE us.user_id = $1
		ORDER BY s.id`

	prefs := &topics.Preferences{Topics: []topics.Topic{}, SubTopics: []topics.SubTopic{}}

	rows, err := r.db.QueryContext(ctx, topicsQuery, userID)
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user topics")
	}
	for rows.Next() {
		t := topics.Topic{SubTopics: []topics.SubTopic{}}
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			_ = rows.Close()
			return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "scan user topic")
		}
		prefs.Topics = append(prefs.Topics, t)
	}
	if err := closeRows(rows); err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user topics")
	}

	rows, err = r.db.QueryContext(ctx, subTopicsQuery, userID)
	if err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user subtopics")
	}
	for rows.Next() {
		var s topics.SubTopic
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.TopicID); err != nil {
			_ = rows.Close()
			return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "scan user subtopic")
		}
		prefs.SubTopics = append(prefs.SubTopics, s)
	}
	if err := closeRows(rows); err != nil {
		return nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user subtopics")
	}
	return prefs, nil
}

func (r *TopicRepo) UserSelections(ctx context.Context, userID int64) ([]topics.UserTopic, []topics.UserSubTopic, error) {
	topicIDs, err := r.queryIDs(ctx, `SELECT topic_id FROM user_topics WHERE user_id = $1 ORDER BY topic_id`, userID)
	if err != nil {
		return nil, nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user topic ids")
	}
	subTopicIDs, err := r.queryIDs(ctx, `SELECT sub_topic_id FROM user_sub_topics WHERE user_id = $1 ORDER BY sub_topic_id`, userID)
	if err != nil {
		return nil, nil, apperrors.Kindf(apperrors.ErrPersistence, err, "select user subtopic ids")
	}

	ut := make([]topics.UserTopic, 0, len(topicIDs))
	for _, id := range topicIDs {
		ut = append(ut, topics.UserTopic{UserID: userID, TopicID: id})
	}
	ust := make([]topics.UserSubTopic, 0, len(subTopicIDs))
	for _, id := range subTopicIDs {
		ust = append(ust, topics.UserSubTopic{UserID: userID, SubTopicID: id})
	}
	return ut, ust, nil
}

func (r *TopicRepo) replace(ctx context.Context, userID int64, ids []int, deleteQuery, insertQuery, kind string) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, deleteQuery, userID); err != nil {
			return apperrors.Kindf(apperrors.ErrPersistence, err, "clear user %ss", kind)
		}
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, insertQuery, userID, id)
			if db.IsForeignKeyViolationError(err) {
				return apperrors.Kindf(apperrors.ErrBadRequest, err, "unknown %s id %d", kind, id)
			}
			if err != nil {
				return apperrors.Kindf(apperrors.ErrPersistence, err, "insert user %s", kind)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrBadRequest) || apperrors.Is(err, apperrors.ErrPersistence) {
			return 0, err
		}
		return 0, apperrors.Kindf(apperrors.ErrPersistence, err, "replace user %ss", kind)
	}
	return inserted, nil
}

func (r *TopicRepo) queryCatalog(ctx context.Context, query string, args ...any) ([]topics.Topic, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	list := make([]topics.Topic, 0)
	index := make(map[int]int)
	for rows.Next() {
		var (
			t       topics.Topic
			subID   sql.NullInt64
			subName sql.NullString
			subSlug sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &subID, &subName, &subSlug); err != nil {
			_ = rows.Close()
			return nil, err
		}

		i, ok := index[t.ID]
		if !ok {
			t.SubTopics = []topics.SubTopic{}
			list = append(list, t)
			i = len(list) - 1
			index[t.ID] = i
		}
		if subID.Valid {
			list[i].SubTopics = append(list[i].SubTopics, topics.SubTopic{
				ID:      int(subID.Int64),
				Name:    subName.String,
				Slug:    subSlug.String,
				TopicID: t.ID,
			})
		}
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TopicRepo) queryIDs(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	return rows.Close()
}
