package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"

	"github.com/joaofns/authsessions/userdir"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func credentialRows(id int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "refresh_token"}).
		AddRow(id, "testuser", "test@test.com", "100000.c2FsdA==.a2V5", "tok-1")
}

func TestFindByUsername(t *testing.T) {
	db, mock := newDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("SELECT id, username, email, password_hash").
		WithArgs("testuser").
		WillReturnRows(credentialRows(7))

	cred, err := repo.FindByUsername(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if cred.ID != 7 || cred.Email != "test@test.com" || cred.RefreshToken != "tok-1" {
		t.Fatalf("unexpected credential: %+v", cred)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByUsernameNotFound(t *testing.T) {
	db, mock := newDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("SELECT id, username, email, password_hash").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, userdir.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByRefreshTokenNotFound(t *testing.T) {
	db, mock := newDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("SELECT id, username, email, password_hash").
		WithArgs("stale-token").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByRefreshToken(context.Background(), "stale-token"); !errors.Is(err, userdir.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateFillsID(t *testing.T) {
	db, mock := newDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery("INSERT INTO credentials").
		WithArgs("newuser", "new@test.com", "100000.c2FsdA==.a2V5", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	cred := &userdir.Credential{Username: "newuser", Email: "new@test.com", PasswordHash: "100000.c2FsdA==.a2V5"}
	if err := repo.Create(context.Background(), cred); err != nil {
		t.Fatalf("create: %v", err)
	}
	if cred.ID != 42 {
		t.Fatalf("expected generated ID 42, got %d", cred.ID)
	}
}

func TestSaveMissingRowReturnsNotFound(t *testing.T) {
	db, mock := newDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("UPDATE credentials").
		WithArgs(int64(99), "x@test.com", "hash", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	cred := &userdir.Credential{ID: 99, Email: "x@test.com", PasswordHash: "hash"}
	if err := repo.Save(context.Background(), cred); !errors.Is(err, userdir.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}
}

func TestUnitOfWorkCommitsOnSuccess(t *testing.T) {
	db, mock := newDB(t)
	m := NewManager(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE credentials").
		WithArgs(int64(7), "test@test.com", "newhash", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.Do(context.Background(), func(ctx context.Context, dir userdir.Directory) error {
		return dir.Save(ctx, &userdir.Credential{ID: 7, Email: "test@test.com", PasswordHash: "newhash"})
	})
	if err != nil {
		t.Fatalf("unit of work: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db, mock := newDB(t)
	m := NewManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := m.Do(context.Background(), func(context.Context, userdir.Directory) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunMigrationsUsesEmbeddedFS(t *testing.T) {
	db, _ := newDB(t)
	m := NewManager(db)

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	if err := m.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}
