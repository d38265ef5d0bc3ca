package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"expressivart/internal/domain/entity"
	"expressivart/internal/domain/repository"
	"expressivart/internal/infrastructure/metrics"
	"expressivart/internal/infrastructure/ratelimit"
	"expressivart/internal/infrastructure/realtime"
	"expressivart/pkg/errors"
	"expressivart/pkg/logger"
)

const (
	messagesTable = "messages"

	enrichTimeout = 3 * time.Second

	// MaxMessageLength caps message content, in characters, after trimming.
	MaxMessageLength = 4000
)

type ChatUseCase struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	artworkRepo      repository.ArtworkRepository
	profiles         ProfileLookup
	publisher        realtime.Publisher
	subscriber       realtime.Subscriber
	rateLimiter      RateLimiter
	log              zerolog.Logger
	now              func() time.Time
}

func NewChatUseCase(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	artworkRepo repository.ArtworkRepository,
	profiles ProfileLookup,
	publisher realtime.Publisher,
	subscriber realtime.Subscriber,
	rateLimiter RateLimiter,
) *ChatUseCase {
	if rateLimiter == nil {
		rateLimiter = noLimit{}
	}
	return &ChatUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		artworkRepo:      artworkRepo,
		profiles:         profiles,
		publisher:        publisher,
		subscriber:       subscriber,
		rateLimiter:      rateLimiter,
		log:              logger.With("chat"),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Resolve returns the conversation for (artwork, buyer), creating it with
// the given seller when none exists. Concurrent first contacts converge on
// the same row: losing the insert race re-reads the winner.
func (uc *ChatUseCase) Resolve(ctx context.Context, artworkID, buyerID, sellerID string) (*entity.Conversation, error) {
	artworkID = strings.TrimSpace(artworkID)
	buyerID = strings.TrimSpace(buyerID)
	sellerID = strings.TrimSpace(sellerID)
	if artworkID == "" || buyerID == "" || sellerID == "" {
		metrics.ConversationsResolved.WithLabelValues("failed").Inc()
		return nil, errors.ResolveFailed("Could not open conversation",
			errors.BadRequest("artwork_id, buyer_id and seller_id are required", nil))
	}

	existing, err := uc.conversationRepo.FindByArtworkAndBuyer(ctx, artworkID, buyerID)
	if err == nil {
		if err := checkPair(existing, artworkID, buyerID); err != nil {
			return nil, uc.resolveFailed(err, artworkID, buyerID)
		}
		metrics.ConversationsResolved.WithLabelValues("existing").Inc()
		return existing, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		metrics.ConversationsResolved.WithLabelValues("failed").Inc()
		uc.log.Error().Err(err).Str("artwork_id", artworkID).Str("buyer_id", buyerID).Msg("conversation lookup failed")
		return nil, errors.ResolveFailed("Could not open conversation", err)
	}

	now := uc.now()
	conversation := &entity.Conversation{
		ArtworkID: artworkID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = uc.conversationRepo.Create(ctx, conversation)
	if err == nil {
		metrics.ConversationsResolved.WithLabelValues("created").Inc()
		uc.log.Info().Str("conversation_id", conversation.ID).Str("artwork_id", artworkID).Msg("conversation created")
		return conversation, nil
	}

	if errors.Is(err, errors.CodeConflict) {
		winner, findErr := uc.conversationRepo.FindByArtworkAndBuyer(ctx, artworkID, buyerID)
		if findErr == nil {
			findErr = checkPair(winner, artworkID, buyerID)
		}
		if findErr == nil {
			metrics.ConversationsResolved.WithLabelValues("raced").Inc()
			return winner, nil
		}
		err = findErr
	}

	return nil, uc.resolveFailed(err, artworkID, buyerID)
}

func (uc *ChatUseCase) resolveFailed(err error, artworkID, buyerID string) error {
	metrics.ConversationsResolved.WithLabelValues("failed").Inc()
	uc.log.Error().Err(err).Str("artwork_id", artworkID).Str("buyer_id", buyerID).Msg("conversation resolve failed")
	return errors.ResolveFailed("Could not open conversation", err)
}

// checkPair guards against a stored row whose key does not match its fields.
func checkPair(c *entity.Conversation, artworkID, buyerID string) error {
	if c.IsFor(artworkID, buyerID) {
		return nil
	}
	return errors.Internal("Conversation key does not match its artwork and buyer", nil)
}

// StartConversation resolves the buyer's conversation about an artwork. An
// empty sellerID means the artwork's artist.
func (uc *ChatUseCase) StartConversation(ctx context.Context, buyerID, artworkID, sellerID string) (*entity.Conversation, error) {
	if buyerID == "" {
		return nil, errors.AuthRequired()
	}
	if allowed, wait := uc.rateLimiter.Allow(buyerID, ratelimit.ActionResolve); !allowed {
		return nil, errors.TooManyRequests("Too many conversations opened. Please wait before starting another", wait)
	}

	artworkID = strings.TrimSpace(artworkID)
	if artworkID == "" {
		return nil, errors.ResolveFailed("Could not open conversation", errors.BadRequest("artwork_id is required", nil))
	}

	artwork, err := uc.artworkRepo.GetByID(ctx, artworkID)
	if err != nil {
		return nil, errors.ResolveFailed("Could not open conversation", err)
	}

	sellerID = strings.TrimSpace(sellerID)
	if sellerID == "" {
		sellerID = artwork.ArtistID
	} else if sellerID != artwork.ArtistID {
		return nil, errors.ResolveFailed("Could not open conversation",
			errors.BadRequest("seller_id does not match the artwork's artist", nil))
	}
	if buyerID == sellerID {
		return nil, errors.ResolveFailed("Could not open conversation",
			errors.BadRequest("You cannot start a conversation about your own artwork", nil))
	}

	return uc.Resolve(ctx, artworkID, buyerID, sellerID)
}

// GetConversation returns the conversation when userID takes part in it.
func (uc *ChatUseCase) GetConversation(ctx context.Context, conversationID, userID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this conversation", nil)
	}
	return conversation, nil
}

// LoadHistory returns every stored message of the conversation, oldest first.
func (uc *ChatUseCase) LoadHistory(ctx context.Context, conversationID string) ([]entity.MessageView, error) {
	messages, err := uc.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		uc.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("history load failed")
		return nil, errors.LoadFailed("Could not load messages", err)
	}

	views := make([]entity.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, entity.MessageView{Message: m, Sender: uc.senderOf(ctx, m.SenderID)})
	}
	return views, nil
}

// History is LoadHistory for a participant, with sides computed for userID.
func (uc *ChatUseCase) History(ctx context.Context, conversationID, userID string) ([]entity.MessageView, error) {
	if _, err := uc.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	views, err := uc.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i] = views[i].ForViewer(userID)
	}
	return views, nil
}

// Send persists a message and publishes it to live listeners. The caller's
// own view is updated only through that publication.
func (uc *ChatUseCase) Send(ctx context.Context, conversationID, senderID, text string) (*entity.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		metrics.MessagesSent.WithLabelValues("rejected").Inc()
		return nil, errors.SendFailed("Message not sent", errors.BadRequest("Message cannot be empty", nil))
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		metrics.MessagesSent.WithLabelValues("rejected").Inc()
		return nil, errors.SendFailed("Message not sent",
			errors.BadRequest(fmt.Sprintf("Message cannot be longer than %d characters", MaxMessageLength), nil))
	}

	if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
		metrics.MessagesSent.WithLabelValues("rate_limited").Inc()
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", wait)
	}

	if _, err := uc.GetConversation(ctx, conversationID, senderID); err != nil {
		metrics.MessagesSent.WithLabelValues("rejected").Inc()
		return nil, errors.SendFailed("Message not sent", err)
	}

	message := &entity.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      uc.now(),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		metrics.MessagesSent.WithLabelValues("failed").Inc()
		uc.log.Error().Err(err).Str("conversation_id", conversationID).Msg("message insert failed")
		return nil, errors.SendFailed("Message not sent", err)
	}
	metrics.MessagesSent.WithLabelValues("sent").Inc()

	if err := uc.conversationRepo.Touch(ctx, conversationID, message.CreatedAt); err != nil {
		uc.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("conversation touch failed")
	}

	change, err := realtime.NewChange(messagesTable, realtime.EventInsert, map[string]string{
		"conversation_id": conversationID,
		"sender_id":       senderID,
	}, message)
	if err == nil {
		err = uc.publisher.Publish(ctx, change)
	}
	if err != nil {
		uc.log.Error().Err(err).Str("message_id", message.ID).Msg("message publish failed")
	}

	return message, nil
}

// Subscribe delivers every message inserted into the conversation after the
// call returns, until cancel is called. onError receives a
// SUBSCRIPTION_FAILED error if the live connection drops; nothing is
// delivered after that.
func (uc *ChatUseCase) Subscribe(
	conversationID string,
	onInsert func(entity.MessageView),
	onError func(error),
) (func(), error) {
	filter := realtime.Filter{
		Table:  messagesTable,
		Event:  realtime.EventInsert,
		Column: "conversation_id",
		Value:  conversationID,
	}

	var cancelled atomic.Bool
	sub, err := uc.subscriber.Subscribe(filter, func(change realtime.Change) {
		var message entity.Message
		if err := change.Decode(&message); err != nil {
			uc.log.Warn().Err(err).Str("filter", filter.String()).Msg("dropping undecodable message")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
		defer cancel()
		view := entity.MessageView{Message: &message, Sender: uc.senderOf(ctx, message.SenderID)}
		// Enrichment can outlast a cancel.
		if cancelled.Load() {
			return
		}
		onInsert(view)
	}, func(err error) {
		if onError != nil {
			onError(errors.SubscriptionFailed("Live updates stopped", err))
		}
	})
	if err != nil {
		return nil, errors.SubscriptionFailed("Could not subscribe to live updates", err)
	}
	return func() {
		cancelled.Store(true)
		sub.Release()
	}, nil
}

// ListConversations returns the user's conversations with artwork, counterpart
// and last message, most recently active first.
func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.ConversationWithDetails, error) {
	conversations, err := uc.conversationRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*entity.ConversationWithDetails, 0, len(conversations))
	for _, c := range conversations {
		details := &entity.ConversationWithDetails{Conversation: c}

		if artwork, err := uc.artworkRepo.GetByID(ctx, c.ArtworkID); err == nil {
			details.Artwork = artwork.Summary()
		}
		details.OtherUser = uc.senderOf(ctx, c.OtherParticipant(userID))

		last, err := uc.messageRepo.Latest(ctx, c.ID)
		if err != nil {
			uc.log.Warn().Err(err).Str("conversation_id", c.ID).Msg("latest message lookup failed")
		}
		details.LastMessage = last

		result = append(result, details)
	}
	return result, nil
}

// MarkRead flags the counterpart's messages as read and returns how many changed.
func (uc *ChatUseCase) MarkRead(ctx context.Context, conversationID, userID string) (int, error) {
	if _, err := uc.GetConversation(ctx, conversationID, userID); err != nil {
		return 0, err
	}
	n, err := uc.messageRepo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, errors.Internal("Failed to mark messages as read", err)
	}
	return n, nil
}

func (uc *ChatUseCase) senderOf(ctx context.Context, userID string) *entity.ProfileSummary {
	if uc.profiles == nil || userID == "" {
		return nil
	}
	s, err := uc.profiles.Summary(ctx, userID)
	if err != nil {
		uc.log.Debug().Err(err).Str("user_id", userID).Msg("profile lookup failed")
		return nil
	}
	return s
}
