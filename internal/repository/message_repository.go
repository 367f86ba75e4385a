package repository

import (
	"context"
	"database/sql"
	"time"
)

// Message mirrors the 'messages' table plus the author name joined in for
// display.  Messages belong to exactly one office room.
type Message struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	OfficeID  uint64    `json:"officeId"`
	UserID    uint64    `json:"userId"`
	UserName  string    `json:"user_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageJoinQuery = `SELECT m.id, m.content, m.office_id, m.user_id, u.name,
       m.created_at, m.updated_at
  FROM messages m
  JOIN users u ON u.id = m.user_id`

func scanMessage(row interface{ Scan(...any) error }, m *Message) error {
	return row.Scan(&m.ID, &m.Content, &m.OfficeID, &m.UserID, &m.UserName,
		&m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a message and reads the full row back.
func (r *MessageRepo) Create(ctx context.Context, m *Message) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (content, office_id, user_id) VALUES (?,?,?)",
		m.Content, m.OfficeID, m.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return scanMessage(r.DB.QueryRowContext(ctx, messageJoinQuery+" WHERE m.id=?", m.ID), m)
}

// GetByID fetches one message or ErrNotFound.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (Message, error) {
	var m Message
	err := scanMessage(r.DB.QueryRowContext(ctx, messageJoinQuery+" WHERE m.id=? LIMIT 1", id), &m)
	if err == sql.ErrNoRows {
		return Message{}, ErrNotFound
	}
	return m, err
}

// ListByOffice returns one office's message history, oldest first.  The
// result is what gets cached under messages:office:<id>.
func (r *MessageRepo) ListByOffice(ctx context.Context, officeID uint64) ([]Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		messageJoinQuery+" WHERE m.office_id=? ORDER BY m.id", officeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateContent rewrites the body of a message and reads the row back.
func (r *MessageRepo) UpdateContent(ctx context.Context, m *Message) error {
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET content=? WHERE id=?", m.Content, m.ID); err != nil {
		return err
	}
	err := scanMessage(r.DB.QueryRowContext(ctx, messageJoinQuery+" WHERE m.id=?", m.ID), m)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

// Delete removes a message or returns ErrNotFound.
func (r *MessageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM messages WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
