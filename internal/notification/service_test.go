package notification_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantasy/internal/market/models"
	"fantasy/internal/notification"
	"fantasy/internal/notification/store"
	id "fantasy/pkg/domain"
	dErrors "fantasy/pkg/domain-errors"
)

func newService() *notification.Service {
	return notification.NewService(store.NewInMemory(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifyPlayerSoldLandsInSellerInbox(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	seller := id.NewUserID()
	event := models.PlayerSold{
		RecipientUserID: seller,
		PlayerID:        id.NewPlayerID(),
		PlayerName:      "Pedri",
		BuyerTeamID:     id.NewTeamID(),
		BuyerTeamName:   "Rovers",
		Amount:          95_000,
		SellerNewBudget: 1_095_000,
		OccurredAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, svc.NotifyPlayerSold(ctx, event))

	items, err := svc.List(ctx, seller, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	n := items[0]
	assert.Equal(t, notification.TypeTransfer, n.Type)
	assert.Equal(t, "Your player Pedri was sold to Rovers for $95000", n.Message)
	assert.Equal(t, event.PlayerID, n.Metadata.PlayerID)
	assert.Equal(t, int64(1_095_000), n.Metadata.SellerNewBudget)
	assert.False(t, n.Read)

	require.NoError(t, svc.MarkRead(ctx, seller, n.ID))
	unread, err := svc.List(ctx, seller, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestListEmptyInboxIsEmptySlice(t *testing.T) {
	items, err := newService().List(context.Background(), id.NewUserID(), false)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestMarkReadUnknownIsNotFound(t *testing.T) {
	err := newService().MarkRead(context.Background(), id.NewUserID(), id.NewNotificationID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

type brokenStore struct{ notification.Store }

func (brokenStore) Save(context.Context, notification.Notification) error {
	return errors.New("redis down")
}

func (brokenStore) List(context.Context, id.UserID, bool) ([]notification.Notification, error) {
	return nil, errors.New("redis down")
}

func TestStoreFailures(t *testing.T) {
	svc := notification.NewService(brokenStore{}, nil)
	ctx := context.Background()

	assert.Error(t, svc.NotifyPlayerSold(ctx, models.PlayerSold{RecipientUserID: id.NewUserID()}))

	_, err := svc.List(ctx, id.NewUserID(), false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
