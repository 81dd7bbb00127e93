package item_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finlink/internal/item"
)

func TestService_Link(t *testing.T) {
	type testCase struct {
		name      string
		params    item.LinkParams
		setupMock func(m *item.MockRepository)
		wantNew   bool
		wantErr   bool
	}

	existing := &item.Item{UserID: "u1", ItemID: "item-1", AccessToken: "access-1"}

	tests := []testCase{
		{
			name:   "NewItem",
			params: item.LinkParams{UserID: "u1", ItemID: "item-2", AccessToken: "access-2", InstitutionName: "Chase"},
			setupMock: func(m *item.MockRepository) {
				m.EXPECT().ListByUser(gomock.Any(), "u1").Return([]*item.Item{existing}, nil)
				m.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, it *item.Item) error {
						assert.Equal(t, "access-2", it.AccessToken)
						assert.Equal(t, "Chase", it.InstitutionName)
						return nil
					})
			},
			wantNew: true,
		},
		{
			name:   "DuplicateAccessToken",
			params: item.LinkParams{UserID: "u1", ItemID: "item-1", AccessToken: "access-1"},
			setupMock: func(m *item.MockRepository) {
				m.EXPECT().ListByUser(gomock.Any(), "u1").Return([]*item.Item{existing}, nil)
			},
		},
		{
			name:   "ListError",
			params: item.LinkParams{UserID: "u1", AccessToken: "access-3"},
			setupMock: func(m *item.MockRepository) {
				m.EXPECT().ListByUser(gomock.Any(), "u1").Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name:   "SaveError",
			params: item.LinkParams{UserID: "u1", AccessToken: "access-3"},
			setupMock: func(m *item.MockRepository) {
				m.EXPECT().ListByUser(gomock.Any(), "u1").Return(nil, nil)
				m.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := item.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := item.NewService(repo).Link(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)

			if tt.wantNew {
				assert.NotEqual(t, existing, got)
				assert.NotEmpty(t, got.ID)
				assert.False(t, got.CreatedAt.IsZero())
			} else {
				assert.Same(t, existing, got)
			}
		})
	}
}

func TestService_Unlink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := item.NewMockRepository(ctrl)
	repo.EXPECT().Delete(gomock.Any(), "u1", "item-9").Return(item.ErrNotFound)

	err := item.NewService(repo).Unlink(context.Background(), "u1", "item-9")
	assert.ErrorIs(t, err, item.ErrNotFound)
}
