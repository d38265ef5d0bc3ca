package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/pkg/errors"
)

const uniqueViolation = "23505"

func mapPgError(err error, resource, action string) error {
	if stderrors.Is(err, pgx.ErrNoRows) {
		return errors.NotFound(resource, err)
	}
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Conflict(resource+" already exists", err)
	}
	return errors.Internal("Failed to "+action+" "+resource, err)
}

type pgConversationRepository struct {
	pool *pgxpool.Pool
}

// NewPgConversationRepository relies on UNIQUE (artwork_id, buyer_id) for the
// one-conversation-per-pair rule.
func NewPgConversationRepository(pool *pgxpool.Pool) repository.ConversationRepository {
	return &pgConversationRepository{pool: pool}
}

const conversationColumns = `id::text, artwork_id, buyer_id, seller_id, created_at, updated_at`

func scanConversation(row pgx.Row) (*entity.Conversation, error) {
	var c entity.Conversation
	if err := row.Scan(&c.ID, &c.ArtworkID, &c.BuyerID, &c.SellerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("Conversation", err)
	}
	c, err := scanConversation(r.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = $1::uuid`, id))
	if err != nil {
		return nil, mapPgError(err, "Conversation", "get")
	}
	return c, nil
}

func (r *pgConversationRepository) FindByArtworkAndBuyer(ctx context.Context, artworkID, buyerID string) (*entity.Conversation, error) {
	c, err := scanConversation(r.pool.QueryRow(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE artwork_id = $1 AND buyer_id = $2`,
		artworkID, buyerID))
	if err != nil {
		return nil, mapPgError(err, "Conversation", "get")
	}
	return c, nil
}

// Create inserts with ON CONFLICT DO NOTHING; an empty RETURNING means the
// pair already has a conversation and is reported as a conflict.
func (r *pgConversationRepository) Create(ctx context.Context, c *entity.Conversation) error {
	id := uuid.NewString()
	now := createdAtOr(c.CreatedAt)

	created, err := scanConversation(r.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, artwork_id, buyer_id, seller_id, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $5)
		ON CONFLICT (artwork_id, buyer_id) DO NOTHING
		RETURNING `+conversationColumns,
		id, c.ArtworkID, c.BuyerID, c.SellerID, now))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return errors.Conflict("Conversation already exists", err)
	}
	if err != nil {
		return mapPgError(err, "Conversation", "create")
	}

	*c = *created
	return nil
}

func (r *pgConversationRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, mapPgError(err, "conversations", "list")
	}
	defer rows.Close()

	var out []*entity.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, mapPgError(err, "conversations", "scan")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "conversations", "list")
	}
	return out, nil
}

func (r *pgConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	ct, err := r.pool.Exec(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1::uuid`, id, at)
	if err != nil {
		return mapPgError(err, "Conversation", "update")
	}
	if ct.RowsAffected() == 0 {
		return errors.NotFound("Conversation", nil)
	}
	return nil
}

type pgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) repository.MessageRepository {
	return &pgMessageRepository{pool: pool}
}

const messageColumns = `id::text, conversation_id::text, sender_id, content, is_read, created_at`

func scanMessage(row pgx.Row) (*entity.Message, error) {
	var m entity.Message
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgMessageRepository) Create(ctx context.Context, m *entity.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.IsRead, m.CreatedAt)
	if err != nil {
		return mapPgError(err, "Message", "create")
	}
	return nil
}

func (r *pgMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC`, conversationID)
	if err != nil {
		return nil, mapPgError(err, "messages", "list")
	}
	defer rows.Close()

	var out []*entity.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, mapPgError(err, "messages", "scan")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "messages", "list")
	}
	return out, nil
}

func (r *pgMessageRepository) Latest(ctx context.Context, conversationID string) (*entity.Message, error) {
	m, err := scanMessage(r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, conversationID))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapPgError(err, "Message", "get")
	}
	return m, nil
}

func (r *pgMessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE conversation_id = $1::uuid AND sender_id <> $2 AND NOT is_read`,
		conversationID, readerID)
	if err != nil {
		return 0, mapPgError(err, "messages", "update")
	}
	return int(ct.RowsAffected()), nil
}
