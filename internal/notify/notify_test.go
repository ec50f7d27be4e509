package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	kafkamocks "github.com/honeynil/raffle-service/internal/infrastructure/kafka/mocks"
	"github.com/honeynil/raffle-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaNotifier_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	producer := kafkamocks.NewMockKafkaProducer(ctrl)
	notifier := NewKafkaNotifier(producer, "notifications")
	ctx := context.Background()
	n := models.Notification{ID: "abc", Kind: models.NotificationPurchaseConfirmed, PurchaseID: 42, To: "juan@example.com"}

	t.Run("keyed by purchase", func(t *testing.T) {
		producer.EXPECT().Send(gomock.Any(), "notifications", "42", gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _ string, value []byte) error {
				var got models.Notification
				require.NoError(t, json.Unmarshal(value, &got))
				assert.Equal(t, n.ID, got.ID)
				assert.Equal(t, n.To, got.To)
				return nil
			})

		assert.NoError(t, notifier.Publish(ctx, n))
	})

	t.Run("broker error", func(t *testing.T) {
		producer.EXPECT().Send(gomock.Any(), "notifications", "42", gomock.Any()).Return(errors.New("leader not available"))

		err := notifier.Publish(ctx, n)
		assert.ErrorContains(t, err, "leader not available")
	})
}

func TestTemplates(t *testing.T) {
	tpl := NewTemplates("Rifas Gana Ya", "WhatsApp 999 888 777")
	tpl.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	code := "ANA10"
	p := &models.Purchase{
		ID:           7,
		Name:         "JUAN PEREZ",
		Email:        "juan@example.com",
		Quantity:     2,
		Amount:       decimal.NewFromInt(44),
		Tickets:      []string{"471001", "471002"},
		ReferralCode: &code,
		CreatedAt:    time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC),
	}
	ref := &models.Referral{Name: "ANA TORRES", Email: "ana@example.com", Code: code}

	t.Run("confirmed", func(t *testing.T) {
		buyer, owner := tpl.Confirmed(p, "Honda Wave", ref)
		assert.Equal(t, models.NotificationPurchaseConfirmed, buyer.Kind)
		assert.Equal(t, "juan@example.com", buyer.To)
		assert.Equal(t, int64(7), buyer.PurchaseID)
		assert.NotEmpty(t, buyer.ID)
		assert.Contains(t, buyer.Body, "471001, 471002")
		assert.Contains(t, buyer.Body, "S/. 44.00")
		assert.Contains(t, buyer.Body, "09/03/2025")
		assert.Contains(t, buyer.Body, "WhatsApp 999 888 777")

		require.NotNil(t, owner)
		assert.Equal(t, models.NotificationReferralConfirmed, owner.Kind)
		assert.Equal(t, "ana@example.com", owner.To)
		assert.Contains(t, owner.Body, "18%")
		assert.NotEqual(t, buyer.ID, owner.ID)
	})

	t.Run("rejected without referral", func(t *testing.T) {
		buyer, owner := tpl.Rejected(p, "", nil)
		assert.Equal(t, models.NotificationPurchaseRejected, buyer.Kind)
		assert.Contains(t, buyer.Body, "Untitled")
		assert.Nil(t, owner)
	})
}
