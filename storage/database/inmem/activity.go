package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core/activity"
)

type activityRepository struct {
	db *activityTable
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activity}
}

func (repo *activityRepository) CreateActivity(_ context.Context, act activity.Activity) (activity.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	act.Questions = nil
	repo.db.table[act.ID] = &act
	repo.db.order = append(repo.db.order, act.ID)
	return repo.withQuestions(act), nil
}

func (repo *activityRepository) QueryAllActivities(_ context.Context) ([]activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	acts := make([]activity.Activity, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		acts = append(acts, repo.withQuestions(*repo.db.table[id]))
	}
	return acts, nil
}

func (repo *activityRepository) GetActivityByID(_ context.Context, id string) (activity.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if act, ok := repo.db.table[id]; ok {
		return repo.withQuestions(*act), nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) CreateQuestion(_ context.Context, q activity.Question) (activity.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[q.ActivityID]; !ok {
		return activity.Question{}, activity.ErrNotFound
	}
	q.Options = append([]string(nil), q.Options...)
	repo.db.questions[q.ActivityID] = append(repo.db.questions[q.ActivityID], q)
	return q, nil
}

// withQuestions must be called with the lock held.
func (repo *activityRepository) withQuestions(act activity.Activity) activity.Activity {
	qs := repo.db.questions[act.ID]
	act.Questions = make([]activity.Question, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		act.Questions[i] = q
	}
	return act
}
