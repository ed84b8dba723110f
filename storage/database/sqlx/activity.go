package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/activity"
	"github.com/trezcool/darasa/storage/database"
)

type activityRepository struct {
	db core.DBExecutor
}

var _ activity.Repository = (*activityRepository)(nil)

func NewActivityRepository(db core.DBExecutor) activity.Repository {
	return &activityRepository{db: db}
}

const (
	activityColumns = `id, teacher_id, title, description, created_at`
	questionColumns = `id, activity_id, text, options, created_at`
)

type questionRow struct {
	ID         string         `db:"id"`
	ActivityID string         `db:"activity_id"`
	Text       string         `db:"text"`
	Options    pq.StringArray `db:"options"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r questionRow) toQuestion() activity.Question {
	return activity.Question{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		Text:       r.Text,
		Options:    []string(r.Options),
		CreatedAt:  r.CreatedAt,
	}
}

func (repo *activityRepository) CreateActivity(ctx context.Context, act activity.Activity) (activity.Activity, error) {
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO activities (`+activityColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		act.ID, act.TeacherID, act.Title, act.Description, act.CreatedAt,
	)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	act.Questions = []activity.Question{}
	return act, nil
}

func (repo *activityRepository) QueryAllActivities(ctx context.Context) ([]activity.Activity, error) {
	acts := make([]activity.Activity, 0)
	if err := repo.db.SelectContext(ctx, &acts, `SELECT `+activityColumns+` FROM activities ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "selecting activities")
	}

	var rows []questionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+questionColumns+` FROM questions ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}
	byActivity := make(map[string][]activity.Question, len(acts))
	for _, r := range rows {
		byActivity[r.ActivityID] = append(byActivity[r.ActivityID], r.toQuestion())
	}

	for i := range acts {
		acts[i].Questions = byActivity[acts[i].ID]
		if acts[i].Questions == nil {
			acts[i].Questions = []activity.Question{}
		}
	}
	return acts, nil
}

func (repo *activityRepository) GetActivityByID(ctx context.Context, id string) (activity.Activity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return activity.Activity{}, activity.ErrNotFound
	}

	var act activity.Activity
	if err := repo.db.GetContext(ctx, &act, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, errors.Wrap(err, "selecting activity")
	}

	var rows []questionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+questionColumns+` FROM questions WHERE activity_id = $1 ORDER BY created_at, id`, id); err != nil {
		return activity.Activity{}, errors.Wrap(err, "selecting questions")
	}
	act.Questions = make([]activity.Question, 0, len(rows))
	for _, r := range rows {
		act.Questions = append(act.Questions, r.toQuestion())
	}
	return act, nil
}

func (repo *activityRepository) CreateQuestion(ctx context.Context, q activity.Question) (activity.Question, error) {
	if _, err := uuid.Parse(q.ActivityID); err != nil {
		return activity.Question{}, activity.ErrNotFound
	}
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.ActivityID, q.Text, pq.StringArray(q.Options), q.CreatedAt,
	)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return activity.Question{}, activity.ErrNotFound
		}
		return activity.Question{}, errors.Wrap(err, "inserting question")
	}
	return q, nil
}
