package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRows = []string{
	"id", "first_name", "last_name", "email", "phone", "bio",
	"profile_image", "user_type", "password_hash", "created_at", "updated_at",
}

func TestGetByEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("agent@example.com").
			WillReturnRows(sqlmock.NewRows(userRows).AddRow(
				int64(42), "Dana", "Reyes", "agent@example.com", "555-0101", nil,
				nil, "agent", "$2a$10$hash", now, now,
			))

		user, err := repo.GetByEmail("agent@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(42), user.ID)
		assert.Equal(t, "Dana Reyes", user.FullName())
		assert.Equal(t, "agent", user.UserType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown email returns nil without error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userRows))

		user, err := repo.GetByEmail("nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error is wrapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("agent@example.com").
			WillReturnError(fmt.Errorf("connection reset"))

		user, err := repo.GetByEmail("agent@example.com")
		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "failed to get user by email")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateEmail(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE users`).
			WithArgs("new@example.com", sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateEmail(42, "new@example.com")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Taken email surfaces ErrDuplicateEmail", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE users`).
			WithArgs("taken@example.com", sqlmock.AnyArg(), int64(42)).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := repo.UpdateEmail(42, "taken@example.com")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Other constraint violations are wrapped, not mapped", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE users`).
			WithArgs("new@example.com", sqlmock.AnyArg(), int64(42)).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "users_agent_fk"})

		err := repo.UpdateEmail(42, "new@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
		assert.Contains(t, err.Error(), "failed to update email")
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("Empty optional fields store as NULL", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE users`).
			WithArgs("Dana", "Reyes", nil, nil, sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateProfile(42, "Dana", "Reyes", "", "")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown user is an error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateProfile(999, "Dana", "Reyes", "", "")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateProfileImage(t *testing.T) {
	t.Run("Returns the previous path", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT profile_image FROM users`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"profile_image"}).AddRow("profiles/old.jpg"))
		mock.ExpectExec(`UPDATE users`).
			WithArgs("profiles/new.jpg", sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		previous, err := repo.UpdateProfileImage(42, "profiles/new.jpg")
		require.NoError(t, err)
		assert.Equal(t, "profiles/old.jpg", previous)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No previous photo returns empty string", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectQuery(`SELECT profile_image FROM users`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"profile_image"}).AddRow(nil))
		mock.ExpectExec(`UPDATE users`).
			WithArgs("profiles/new.jpg", sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		previous, err := repo.UpdateProfileImage(42, "profiles/new.jpg")
		require.NoError(t, err)
		assert.Equal(t, "", previous)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
