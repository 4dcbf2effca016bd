package webhooknotifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	pubsubMemory "github.com/billforge/billforge/internal/pubsub/memory"
	"github.com/billforge/billforge/internal/types"
)

func TestConsumerReceivesPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.GetDefaultConfig()
	lg := logger.NewNopLogger()
	ps := pubsubMemory.NewPubSub(lg)
	defer ps.Close()

	received := make(chan *types.NotificationEvent, 1)
	consumer := NewConsumer(ps, cfg, func(ctx context.Context, event *types.NotificationEvent) error {
		received <- event
		return nil
	}, lg)
	require.NoError(t, consumer.Start(ctx))

	expireOn := types.AddDays(types.Today(), 3)
	sub := &subscription.Subscription{
		ID:        "subs_consumer",
		OwnerID:   "owner_consumer",
		OwnerType: "account",
		ExpireOn:  &expireOn,
	}

	n := NewNotifier(ps, cfg, lg)
	require.NoError(t, n.SendGraceWarning(ctx, sub))

	select {
	case event := <-received:
		require.Equal(t, types.NotificationGraceWarning, event.Type)
		require.Equal(t, "subs_consumer", event.SubscriptionID)
		require.Equal(t, "owner_consumer", event.OwnerID)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification event consumed")
	}
}
