package flatfile

import (
	"context"
	"sort"
	"time"

	"github.com/rs/xid"

	"github.com/haidang/referral-hub/internal/model"
	"github.com/haidang/referral-hub/internal/repository"
)

// AppendActivity prepends the entry and trims the log to
// model.ActivityLogCap records, dropping the oldest.
func (s *Store) AppendActivity(ctx context.Context, activity *model.Activity) error {
	l := s.fileLock(activitiesFile)
	l.Lock()
	defer l.Unlock()

	activities, err := load[model.Activity](s, activitiesFile)
	if err != nil {
		return err
	}

	activity.ID = xid.New().String()
	activity.Timestamp = time.Now().UTC()
	if activity.Metadata == nil {
		activity.Metadata = map[string]any{}
	}

	activities = append([]model.Activity{*activity}, activities...)
	if len(activities) > model.ActivityLogCap {
		activities = activities[:model.ActivityLogCap]
	}
	return save(s, activitiesFile, activities)
}

// ListActivities returns a page of the feed, newest first, plus the total
// count. Insertion order is already newest-first, but the read re-sorts by
// timestamp in case a file was edited or merged by hand.
func (s *Store) ListActivities(ctx context.Context, opts repository.ListOptions) ([]model.Activity, int, error) {
	l := s.fileLock(activitiesFile)
	l.Lock()
	defer l.Unlock()

	activities, err := load[model.Activity](s, activitiesFile)
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	total := len(activities)
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []model.Activity{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return activities[offset:end], total, nil
}
