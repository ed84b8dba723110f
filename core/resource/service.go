package resource

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		CreateResource(ctx context.Context, res Resource) (Resource, error)
		// QueryAllResources returns every Resource, oldest first.
		QueryAllResources(ctx context.Context) ([]Resource, error)
	}

	Service interface {
		Create(ctx context.Context, teacherID string, nr NewResource) (Resource, error)
		List(ctx context.Context) ([]Resource, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, teacherID string, nr NewResource) (Resource, error) {
	res := Resource{
		ID:        uuid.NewString(),
		TeacherID: teacherID,
		Title:     nr.Title,
		URL:       nr.URL,
		CreatedAt: time.Now().UTC(),
	}
	res, err := svc.repo.CreateResource(ctx, res)
	if err != nil {
		return Resource{}, errors.Wrap(err, "creating resource")
	}
	return res, nil
}

func (svc *service) List(ctx context.Context) ([]Resource, error) {
	list, err := svc.repo.QueryAllResources(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return list, nil
}
