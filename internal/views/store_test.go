package views

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/thenewsfeed/content-platform/pkg/postgres"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(&postgres.Client{DB: db}), mock
}

func TestIncrementAndGet(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("INSERT INTO content_views").
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}).AddRow(7))

	count, err := store.IncrementAndGet(context.Background(), "42")
	if err != nil {
		t.Fatalf("IncrementAndGet: %v", err)
	}
	if count != 7 {
		t.Errorf("expected count 7, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestIncrementAndGetPropagatesError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("INSERT INTO content_views").
		WithArgs("42").
		WillReturnError(errors.New("connection refused"))

	if _, err := store.IncrementAndGet(context.Background(), "42"); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetUnknownContentIsZero(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT view_count FROM content_views").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}))

	count, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 for unknown content, got %d", count)
	}
}

func TestGet(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT view_count FROM content_views").
		WithArgs("page-12").
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}).AddRow(123))

	count, err := store.Get(context.Background(), "page-12")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if count != 123 {
		t.Errorf("expected 123, got %d", count)
	}
}
