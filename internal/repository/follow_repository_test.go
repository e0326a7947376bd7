package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFollowToggleAddsEdge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM follows WHERE follower_id=\\? AND followee_id=\\? FOR UPDATE").
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO follows (follower_id, followee_id) VALUES (?,?)")).
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	followed, err := NewFollowRepo(db).Toggle(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !followed {
		t.Fatal("expected followed=true on first toggle")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFollowToggleRemovesEdge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM follows WHERE follower_id=\\? AND followee_id=\\? FOR UPDATE").
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("DELETE FROM follows WHERE follower_id=\\? AND followee_id=\\?").
		WithArgs(uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	followed, err := NewFollowRepo(db).Toggle(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if followed {
		t.Fatal("expected followed=false on second toggle")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIsFollowingAbsentEdge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM follows WHERE follower_id=\\? AND followee_id=\\? LIMIT 1").
		WithArgs(uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	following, err := NewFollowRepo(db).IsFollowing(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("is following: %v", err)
	}
	if following {
		t.Fatal("expected false for absent edge")
	}
}
