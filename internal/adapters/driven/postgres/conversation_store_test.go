package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/custodia-labs/clinref/internal/core/domain"
)

var threadRowColumns = []string{
	"id", "conversation_id", "question", "answer", "html",
	"citations", "sources", "page_references", "backend_thread_id", "created_at",
}

func TestConversationStore_SaveAndGetConversation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewConversationStore(db)
	now := time.Now()
	conv := &domain.Conversation{ID: "c1", UserID: "user-1", Title: "Dosing", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO conversations").
		WithArgs("c1", "user-1", "Dosing", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM conversations WHERE id = \\$1").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}).
			AddRow("c1", "user-1", "Dosing", now, now))

	if err := store.SaveConversation(context.Background(), conv); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}
	got, err := store.GetConversation(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got.Title != "Dosing" || got.UserID != "user-1" {
		t.Errorf("unexpected conversation %+v", got)
	}
}

func TestConversationStore_GetConversationNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM conversations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}))

	_, err := NewConversationStore(db).GetConversation(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConversationStore_ListConversations(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("FROM conversations WHERE user_id = \\$1 ORDER BY updated_at DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs("user-1", 20, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "created_at", "updated_at"}).
			AddRow("c2", "user-1", "Second", now, now).
			AddRow("c1", "user-1", "First", now, now.Add(-time.Hour)))

	convs, err := NewConversationStore(db).ListConversations(context.Background(), "user-1", 20, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(convs) != 2 || convs[0].ID != "c2" {
		t.Errorf("unexpected conversations %+v", convs)
	}
}

func TestConversationStore_DeleteConversation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewConversationStore(db)

	mock.ExpectExec("DELETE FROM conversations").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM conversations").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.DeleteConversation(context.Background(), "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.DeleteConversation(context.Background(), "c1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestConversationStore_SaveThreadEncodesJSON(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	thread := &domain.Thread{
		ID:             "t1",
		ConversationID: "c1",
		Question:       "Q",
		Answer:         "A [1]",
		HTML:           "<p>A</p>",
		Citations:      domain.CitationMap{"1": {Title: "NG136", SourceType: domain.SourceGuidelines}},
		Sources:        domain.SourceDocument{"1": "text"},
		CreatedAt:      now,
	}

	mock.ExpectExec("INSERT INTO threads").
		WithArgs("t1", "c1", "Q", "A [1]", "<p>A</p>",
			[]byte(`{"1":{"title":"NG136","source_type":"guidelines_database"}}`),
			[]byte(`{"1":"text"}`),
			nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewConversationStore(db).SaveThread(context.Background(), thread); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConversationStore_ListThreadsDecodesJSON(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("FROM threads WHERE conversation_id = \\$1 ORDER BY created_at").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(threadRowColumns).
			AddRow("t1", "c1", "Q1", "A1", "", nil, nil, nil, nil, now).
			AddRow("t2", "c1", "Q2", "A2 [1]", "<p>A2</p>",
				[]byte(`{"1":{"title":"NG136","source_type":"guidelines_database"}}`),
				[]byte(`{"1":"Dosage was increased."}`),
				[]byte(`{"1":[{"start_word":"Dosage","end_word":"increased"}]}`),
				"backend-7", now.Add(time.Minute)))

	threads, err := NewConversationStore(db).ListThreads(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].Citations != nil || threads[0].BackendThread != "" {
		t.Errorf("expected NULL columns to stay empty, got %+v", threads[0])
	}
	second := threads[1]
	if second.Citations["1"].SourceType != domain.SourceGuidelines {
		t.Errorf("unexpected citations %+v", second.Citations)
	}
	if wr, ok := second.PageReferences.Occurrence("1", 0); !ok || wr.EndWord != "increased" {
		t.Errorf("unexpected page references %+v", second.PageReferences)
	}
	if second.BackendThread != "backend-7" {
		t.Errorf("expected backend thread id, got %q", second.BackendThread)
	}
}

func TestConversationStore_GetThreadNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM threads WHERE id").WillReturnRows(sqlmock.NewRows(threadRowColumns))

	_, err := NewConversationStore(db).GetThread(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConversationStore_SaveFeedback(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO feedback").
		WithArgs("f1", "c1", "t1", "user-1", "not_helpful", "too vague", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewConversationStore(db).SaveFeedback(context.Background(), &domain.Feedback{
		ID: "f1", ConversationID: "c1", ThreadID: "t1", UserID: "user-1",
		Rating: domain.RatingNotHelpful, Comment: "too vague", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
