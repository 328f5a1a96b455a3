package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const threadColumns = `id, conversation_id, question, answer, html,
	citations, sources, page_references, backend_thread_id, created_at`

// ConversationStore persists chat history: conversations own threads, and
// threads own feedback. Deleting a conversation cascades.
type ConversationStore struct {
	db *DB
}

// NewConversationStore creates a new ConversationStore
func NewConversationStore(db *DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// SaveConversation creates or updates a conversation
func (s *ConversationStore) SaveConversation(ctx context.Context, conv *domain.Conversation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			updated_at = EXCLUDED.updated_at
	`, conv.ID, conv.UserID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID
func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`, id).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

// ListConversations lists a user's conversations, most recently updated first
func (s *ConversationStore) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*domain.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return convs, nil
}

// DeleteConversation deletes a conversation; threads and feedback cascade
func (s *ConversationStore) DeleteConversation(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return expectRow(result)
}

// SaveThread stores a completed thread
func (s *ConversationStore) SaveThread(ctx context.Context, thread *domain.Thread) error {
	citations, err := jsonColumn(thread.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	sources, err := jsonColumn(thread.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	pageRefs, err := jsonColumn(thread.PageReferences)
	if err != nil {
		return fmt.Errorf("marshal page references: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO threads (`+threadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			answer = EXCLUDED.answer,
			html = EXCLUDED.html,
			citations = EXCLUDED.citations,
			sources = EXCLUDED.sources,
			page_references = EXCLUDED.page_references,
			backend_thread_id = EXCLUDED.backend_thread_id
	`,
		thread.ID,
		thread.ConversationID,
		thread.Question,
		thread.Answer,
		thread.HTML,
		citations,
		sources,
		pageRefs,
		NullString(thread.BackendThread),
		thread.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save thread: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID
func (s *ConversationStore) GetThread(ctx context.Context, id string) (*domain.Thread, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id)
	return scanThread(row)
}

// ListThreads lists the threads of a conversation in creation order
func (s *ConversationStore) ListThreads(ctx context.Context, conversationID string) ([]*domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+`
		FROM threads
		WHERE conversation_id = $1
		ORDER BY created_at
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var threads []*domain.Thread
	for rows.Next() {
		thread, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return threads, nil
}

// SaveFeedback stores feedback on a thread
func (s *ConversationStore) SaveFeedback(ctx context.Context, fb *domain.Feedback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, conversation_id, thread_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, fb.ID, fb.ConversationID, fb.ThreadID, fb.UserID, string(fb.Rating), fb.Comment, fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func scanThread(row rowScanner) (*domain.Thread, error) {
	var (
		thread                       domain.Thread
		citations, sources, pageRefs []byte
		backendThread                sql.NullString
	)
	err := row.Scan(
		&thread.ID,
		&thread.ConversationID,
		&thread.Question,
		&thread.Answer,
		&thread.HTML,
		&citations,
		&sources,
		&pageRefs,
		&backendThread,
		&thread.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := scanJSON(citations, &thread.Citations); err != nil {
		return nil, fmt.Errorf("decode citations: %w", err)
	}
	if err := scanJSON(sources, &thread.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	if err := scanJSON(pageRefs, &thread.PageReferences); err != nil {
		return nil, fmt.Errorf("decode page references: %w", err)
	}
	thread.BackendThread = backendThread.String
	return &thread, nil
}
