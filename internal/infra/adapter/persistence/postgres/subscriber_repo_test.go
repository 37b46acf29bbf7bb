package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/infra/adapter/persistence/postgres"
)

var subscriberCols = []string{"id", "email", "status", "source", "subscribed_at", "unsubscribed_at", "created_at", "updated_at"}

func TestSubscriberRepo_GetByEmail(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("ada@example.org").
		WillReturnRows(sqlmock.NewRows(subscriberCols).
			AddRow("s1", "ada@example.org", "Unsubscribed", "Website", now, now, now, now))

	repo := postgres.NewSubscriberRepo(db)
	got, err := repo.GetByEmail(context.Background(), "ada@example.org")
	if err != nil {
		t.Fatalf("GetByEmail err=%v", err)
	}
	if got.Status != entity.SubscriberUnsubscribed || got.UnsubscribedAt == nil {
		t.Fatalf("unexpected subscriber %+v", got)
	}
}

func TestSubscriberRepo_Update(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE subscribers`)).
		WithArgs("Active", "Website", now, nil, sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSubscriberRepo(db)
	err := repo.Update(context.Background(), &entity.Subscriber{
		ID: "s1", Status: "Active", Source: "Website", SubscribedAt: now,
	})
	if err != nil {
		t.Fatalf("Update err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSubscriberRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = $1
ORDER BY subscribed_at DESC
LIMIT $2 OFFSET $3`)).
		WithArgs("Active", 10, 10).
		WillReturnRows(sqlmock.NewRows(subscriberCols))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM subscribers
ORDER BY subscribed_at DESC`)).
		WillReturnRows(sqlmock.NewRows(subscriberCols))

	repo := postgres.NewSubscriberRepo(db)
	if _, err := repo.List(context.Background(), "Active", 10, 10); err != nil {
		t.Fatalf("List err=%v", err)
	}
	if _, err := repo.List(context.Background(), "", 0, 0); err != nil {
		t.Fatalf("List all err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSubscriberRepo_Delete_NoRows(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscribers WHERE id = $1`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSubscriberRepo(db)
	if err := repo.Delete(context.Background(), "gone"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSubscriberRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subscribers`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	repo := postgres.NewSubscriberRepo(db)
	err := repo.Create(context.Background(), &entity.Subscriber{Email: "ada@example.org", Status: "Active", Source: "Website"})
	if !errors.Is(err, entity.ErrConflict) {
		t.Fatalf("Create err=%v, want ErrConflict", err)
	}
}
