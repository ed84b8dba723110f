package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/resource"
)

type resourceRepository struct {
	db core.DBExecutor
}

var _ resource.Repository = (*resourceRepository)(nil)

func NewResourceRepository(db core.DBExecutor) resource.Repository {
	return &resourceRepository{db: db}
}

const resourceColumns = `id, teacher_id, title, url, created_at`

func (repo *resourceRepository) CreateResource(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	_, err := repo.db.ExecContext(
		ctx,
		`INSERT INTO resources (`+resourceColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		res.ID, res.TeacherID, res.Title, res.URL, res.CreatedAt,
	)
	if err != nil {
		return resource.Resource{}, errors.Wrap(err, "inserting resource")
	}
	return res, nil
}

func (repo *resourceRepository) QueryAllResources(ctx context.Context) ([]resource.Resource, error) {
	list := make([]resource.Resource, 0)
	if err := repo.db.SelectContext(ctx, &list, `SELECT `+resourceColumns+` FROM resources ORDER BY created_at, id`); err != nil {
		return nil, errors.Wrap(err, "selecting resources")
	}
	return list, nil
}
