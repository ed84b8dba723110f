package resource_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/resource"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

func TestService_CreateList(t *testing.T) {
	svc := resource.NewService(inmemdb.NewResourceRepository(inmemdb.Open()))
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	res, err := svc.Create(ctx, "teacher-1", resource.NewResource{Title: "Khan Academy", URL: "https://www.khanacademy.org"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "teacher-1", res.TeacherID)
	assert.False(t, res.CreatedAt.IsZero())

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []resource.Resource{res}, list)
}

func TestNewResource_Validate(t *testing.T) {
	validate, translator := core.NewValidator()

	tests := []struct {
		name    string
		nr      resource.NewResource
		wantErr map[string]string
	}{
		{name: "valid", nr: resource.NewResource{Title: "Docs", URL: " https://go.dev/doc "}},
		{
			name:    "missing",
			nr:      resource.NewResource{},
			wantErr: map[string]string{"title": "this field is required", "url": "this field is required"},
		},
		{
			name:    "invalid url",
			nr:      resource.NewResource{Title: "Docs", URL: "not a url"},
			wantErr: map[string]string{"url": "url must be a valid URL"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nr.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.ErrorAs(t, err, &vErrs)
			assert.Equal(t, tt.wantErr, core.TranslateValidationErrors(vErrs, translator))
		})
	}
}
