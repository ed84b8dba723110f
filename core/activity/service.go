package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("activity not found")

type (
	Repository interface {
		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		// QueryAllActivities returns every Activity, oldest first, with its questions.
		QueryAllActivities(ctx context.Context) ([]Activity, error)
		GetActivityByID(ctx context.Context, id string) (Activity, error)
		// CreateQuestion must fail with ErrNotFound when the activity does not exist.
		CreateQuestion(ctx context.Context, q Question) (Question, error)
	}

	Service interface {
		Create(ctx context.Context, teacherID string, na NewActivity) (Activity, error)
		List(ctx context.Context) ([]Activity, error)
		AddQuestion(ctx context.Context, nq NewQuestion) (Question, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, teacherID string, na NewActivity) (Activity, error) {
	act := Activity{
		ID:          uuid.NewString(),
		TeacherID:   teacherID,
		Title:       na.Title,
		Description: na.Description,
		CreatedAt:   time.Now().UTC(),
		Questions:   []Question{},
	}
	act, err := svc.repo.CreateActivity(ctx, act)
	if err != nil {
		return Activity{}, errors.Wrap(err, "creating activity")
	}
	return act, nil
}

func (svc *service) List(ctx context.Context) ([]Activity, error) {
	acts, err := svc.repo.QueryAllActivities(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}
	return acts, nil
}

// AddQuestion attaches a multiple choice question to an existing Activity.
func (svc *service) AddQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	opts := make([]string, len(nq.Options))
	copy(opts, nq.Options)
	q := Question{
		ID:         uuid.NewString(),
		ActivityID: nq.ActivityID,
		Text:       nq.Text,
		Options:    opts,
		CreatedAt:  time.Now().UTC(),
	}
	q, err := svc.repo.CreateQuestion(ctx, q)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Question{}, ErrNotFound
		}
		return Question{}, errors.Wrap(err, "creating question")
	}
	return q, nil
}
