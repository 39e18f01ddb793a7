package project_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/billbook/billbook/internal/apperr"
	"github.com/billbook/billbook/internal/project"
)

func TestService_Create(t *testing.T) {
	customerID := uuid.New()

	tests := []struct {
		name      string
		params    project.CreateParams
		setupMock func(m *project.MockRepository)
		wantField string
	}{
		{
			name:   "DefaultsToActive",
			params: project.CreateParams{Name: "Website", CustomerID: customerID},
			setupMock: func(m *project.MockRepository) {
				m.EXPECT().
					CreateProject(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *project.Project) error {
						assert.Equal(t, project.StatusActive, p.Status)
						p.ID = uuid.New()
						return nil
					})
			},
		},
		{name: "NameRequired", params: project.CreateParams{CustomerID: customerID}, wantField: "name"},
		{name: "CustomerRequired", params: project.CreateParams{Name: "Website"}, wantField: "customer_id"},
		{
			name:      "UnknownStatus",
			params:    project.CreateParams{Name: "Website", CustomerID: customerID, Status: "paused"},
			wantField: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := project.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := project.NewService(repo).Create(context.Background(), tt.params)

			if tt.wantField != "" {
				var verr *apperr.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := project.NewMockRepository(ctrl)
	id := uuid.New()

	repo.EXPECT().GetProject(gomock.Any(), id).
		Return(&project.Project{ID: id, Name: "Website", CustomerID: uuid.New(), Status: project.StatusActive}, nil)
	repo.EXPECT().UpdateProject(gomock.Any(), gomock.Any()).Return(nil)

	got, err := project.NewService(repo).Update(context.Background(), id, project.UpdateParams{
		Status: new(project.StatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, project.StatusCompleted, got.Status)
	assert.Equal(t, "Website", got.Name)
}
