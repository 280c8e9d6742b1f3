package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/circulation/internal/application/port"
	"github.com/xiebiao/circulation/internal/domain/checkout"
	"github.com/xiebiao/circulation/internal/domain/circulation"
	"github.com/xiebiao/circulation/internal/domain/hold"
	"github.com/xiebiao/circulation/internal/domain/title"
	"github.com/xiebiao/circulation/internal/infrastructure/persistence/memory"
)

func TestOpenAndCloseCheckout(t *testing.T) {
	store := memory.NewStore()
	titles := memory.NewTitleRepository(store)
	holds := memory.NewHoldRepository(store)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	engine := circulation.NewService(titles, memory.NewCheckoutRepository(store), holds, store, circulation.Options{
		LoanPeriodDays: 14,
		Clock:          func() time.Time { return now },
	})
	ctx := context.Background()

	tt, err := title.NewTitle("9787115428028", "Go语言圣经", "Donovan", 1)
	require.NoError(t, err)
	require.NoError(t, titles.Create(ctx, tt))

	open := NewOpenCheckoutUseCase(engine, port.NopQueueCache{}, nil)
	c, err := open.Execute(ctx, OpenCheckoutRequest{TitleID: tt.ID, HolderID: 1})
	require.NoError(t, err)
	assert.Equal(t, string(checkout.StatusActive), c.Status)
	assert.Equal(t, now.AddDate(0, 0, 14).Format("2006-01-02 15:04:05"), c.DueDate)

	_, err = open.Execute(ctx, OpenCheckoutRequest{TitleID: tt.ID, HolderID: 2, LoanPeriodDays: 7})
	assert.ErrorIs(t, err, title.ErrOutOfStock)

	waiting, err := engine.CreateHold(ctx, tt.ID, 2)
	require.NoError(t, err)
	require.Equal(t, hold.StatusPending, waiting.Status)

	closeUC := NewCloseCheckoutUseCase(engine, nil, nil)
	returned, err := closeUC.Execute(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, string(checkout.StatusReturned), returned.Status)
	assert.NotEmpty(t, returned.ReturnDate)

	promoted, err := holds.FindByID(ctx, waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, hold.StatusActive, promoted.Status)

	_, err = closeUC.Execute(ctx, c.ID)
	assert.ErrorIs(t, err, checkout.ErrAlreadyReturned)
	_, err = closeUC.Execute(ctx, 999)
	assert.ErrorIs(t, err, checkout.ErrCheckoutNotFound)
}
