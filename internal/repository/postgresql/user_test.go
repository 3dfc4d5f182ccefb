package postgresql_test

import (
	"context"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	mock_database "gitlab.com/discrescue/admin/internal/db/mocks"
	"gitlab.com/discrescue/admin/internal/repository"
	"gitlab.com/discrescue/admin/internal/repository/postgresql"
)

func TestUserRepo_CreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewUserRepo(mockDB)

	mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Eq("printer1"), gomock.Any(), gomock.Eq("printer")).
		DoAndReturn(func(_ context.Context, _ string, args ...interface{}) (pgconn.CommandTag, error) {
			hashed := args[1].(string)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("s3cret")))
			return pgconn.CommandTag("INSERT 0 1"), nil
		})

	assert.NoError(t, repo.CreateUser(context.Background(), "printer1", "s3cret", "printer"))
}

func TestUserRepo_Authenticate(t *testing.T) {
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	storedUser := func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
		*dest.(*repository.AdminUser) = repository.AdminUser{
			ID:       1,
			Username: "printer1",
			Password: string(hashed),
			Role:     "printer",
		}
		return nil
	}

	t.Run("valid password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("printer1")).DoAndReturn(storedUser)

		role, err := repo.Authenticate(ctx, "printer1", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "printer", role)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(storedUser)

		_, err := repo.Authenticate(ctx, "printer1", "wrong")
		assert.ErrorIs(t, err, repository.ErrBadCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewUserRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(pgx.ErrNoRows)

		_, err := repo.Authenticate(ctx, "ghost", "s3cret")
		assert.ErrorIs(t, err, repository.ErrBadCredentials)
	})
}
