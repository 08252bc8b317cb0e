package chatmessage

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/tracing"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/models"
)

const chatColumns = "id, tenant_id, channel, user_id, body, created_at"

// Repository handles chat message persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new chat message repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create persists a chat message.
func (r *Repository) Create(ctx context.Context, tenantID, channel, userID, body string) (*models.ChatMessage, error) {
	ctx, span := tracing.StartSpan(ctx, "chatmessage.Repository.Create")
	defer span.End()

	msg := models.ChatMessage{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Channel:   channel,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("chat_messages")
	sb.Cols("id", "tenant_id", "channel", "user_id", "body", "created_at")
	sb.Values(msg.ID, msg.TenantID, msg.Channel, msg.UserID, msg.Body, msg.CreatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "channel": channel}).Error("Failed to create chat message")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create chat message")
	}
	return &msg, nil
}

// ListByChannel retrieves a channel's messages with pagination, newest first.
func (r *Repository) ListByChannel(ctx context.Context, tenantID, channel string, page, pageSize int) (*models.ChatMessageListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "chatmessage.Repository.ListByChannel")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("chat_messages")
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.Equal("channel", channel),
	)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "channel": channel}).Error("Failed to count chat messages")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count chat messages")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(chatColumns)
	sb.From("chat_messages")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("channel", channel),
	)
	sb.OrderBy("created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var messages []models.ChatMessage
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"tenant_id": tenantID, "channel": channel}).Error("Failed to list chat messages")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list chat messages")
	}

	return &models.ChatMessageListResponse{
		Items:      messages,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
