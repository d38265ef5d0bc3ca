package usecase

import (
	"context"

	"expressivart/internal/infrastructure/realtime"
	"expressivart/pkg/errors"
)

// ChangeFeed hands out raw change subscriptions scoped to what the
// requesting user is allowed to see.
type ChangeFeed struct {
	chat       *ChatUseCase
	subscriber realtime.Subscriber
}

func NewChangeFeed(chat *ChatUseCase, subscriber realtime.Subscriber) *ChangeFeed {
	return &ChangeFeed{chat: chat, subscriber: subscriber}
}

// Subscribe authorizes filter for userID and attaches it. Messages must be
// filtered by a conversation the user takes part in; orders by the user's
// own buyer_id or seller_id.
func (f *ChangeFeed) Subscribe(
	ctx context.Context,
	userID string,
	filter realtime.Filter,
	onChange func(realtime.Change),
	onError func(error),
) (*realtime.Subscription, error) {
	if userID == "" {
		return nil, errors.AuthRequired()
	}
	if err := filter.Validate(); err != nil {
		return nil, errors.SubscriptionFailed("Invalid subscription", errors.BadRequest(err.Error(), err))
	}
	if err := f.authorize(ctx, userID, filter); err != nil {
		return nil, errors.SubscriptionFailed("Subscription not allowed", err)
	}

	sub, err := f.subscriber.Subscribe(filter, onChange, func(err error) {
		if onError != nil {
			onError(errors.SubscriptionFailed("Live updates stopped", err))
		}
	})
	if err != nil {
		return nil, errors.SubscriptionFailed("Could not subscribe to live updates", err)
	}
	return sub, nil
}

func (f *ChangeFeed) authorize(ctx context.Context, userID string, filter realtime.Filter) error {
	switch filter.Table {
	case messagesTable:
		if filter.Column != "conversation_id" {
			return errors.Forbidden("Messages can only be followed per conversation", nil)
		}
		_, err := f.chat.GetConversation(ctx, filter.Value, userID)
		return err
	case OrdersTable:
		if (filter.Column != "buyer_id" && filter.Column != "seller_id") || filter.Value != userID {
			return errors.Forbidden("Orders can only be followed for yourself", nil)
		}
		return nil
	default:
		return errors.BadRequest("Unknown table "+filter.Table, nil)
	}
}
