package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"notes-app-be/internal/dto"
	"notes-app-be/pkg/blobstore"
)

type IJanitorService interface {
	Consume(ctx context.Context) error
}

// janitorService consumes retirement messages and deletes the blobs they
// name. Failures are logged and the message is acked regardless: the blob is
// already unreferenced, another request must never be blocked on its removal.
type janitorService struct {
	subscriber message.Subscriber
	topicName  string
	store      blobstore.Store
	log        zerolog.Logger
}

func NewJanitorService(
	subscriber message.Subscriber,
	topicName string,
	store blobstore.Store,
	log zerolog.Logger,
) IJanitorService {
	return &janitorService{
		subscriber: subscriber,
		topicName:  topicName,
		store:      store,
		log:        log,
	}
}

func (s *janitorService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *janitorService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.RetireAttachmentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.log.Error().Err(err).Str("payload", string(msg.Payload)).Msg("failed to unmarshal retirement message")
		return
	}

	if err := s.store.Retire(ctx, payload.StoredName); err != nil {
		s.log.Error().Err(err).Str("stored_name", payload.StoredName).Msg("failed to retire attachment")
		return
	}

	s.log.Info().Str("stored_name", payload.StoredName).Msg("attachment retired")
}
