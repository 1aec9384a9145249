package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/backoffice/internal/domain"
	"github.com/iho/backoffice/internal/usecase"
)

func januaryWindow(cardID int64) usecase.CreateReconciliationInput {
	return usecase.CreateReconciliationInput{
		CardID:   cardID,
		DateFrom: date(time.January, 1),
		DateTo:   date(time.January, 31),
	}
}

func TestReconciliationUseCase_Create(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx()
	card, _ := f.card(t, domain.CardTypePrepaid)

	_, err := f.cards.CreateExpense(ctx, card.ID, usecase.CardMovementInput{Amount: dec("12.50"), Date: date(time.January, 9)})
	require.NoError(t, err)

	r, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.ReconciliationCode(card.ID, 1), r.Code)
	assert.Equal(t, 1, r.ExpenseCount)
	assert.True(t, r.TotalAmount.Equal(dec("12.50")))
	assert.Equal(t, int64(7), r.CreatedBy)

	t.Run("second pending rendicion conflicts", func(t *testing.T) {
		_, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
		assert.ErrorIs(t, err, domain.ErrOpenReconciliationExists)
		assert.Equal(t, domain.KindConflictingReconciliation, domain.KindOf(err))
	})

	t.Run("closed rendicion still blocks", func(t *testing.T) {
		_, err := f.rendiciones.CloseReconciliation(ctx, r.ID)
		require.NoError(t, err)
		_, err = f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
		assert.ErrorIs(t, err, domain.ErrOpenReconciliationExists)
	})

	t.Run("approved rendicion releases the card", func(t *testing.T) {
		approved, err := f.rendiciones.ApproveReconciliation(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, int64(7), *approved.ApprovedBy)

		next, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
		require.NoError(t, err)
		assert.Equal(t, domain.ReconciliationCode(card.ID, 2), next.Code)
		assert.Equal(t, 0, next.ExpenseCount, "approved expenses stay assigned")
	})
}

func TestReconciliationUseCase_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx()
	card, _ := f.card(t, domain.CardTypePrepaid)

	_, err := f.rendiciones.CreateReconciliation(ctx, usecase.CreateReconciliationInput{
		CardID:   card.ID,
		DateFrom: date(time.February, 1),
		DateTo:   date(time.January, 1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.rendiciones.CreateReconciliation(ctx, januaryWindow(404))
	assert.ErrorIs(t, err, domain.ErrCardNotFound)

	_, err = f.rendiciones.GetReconciliation(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrReconciliationNotFound)
}

func TestReconciliationUseCase_InvalidTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx()
	card, _ := f.card(t, domain.CardTypePrepaid)

	r, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
	require.NoError(t, err)

	_, err = f.rendiciones.ApproveReconciliation(ctx, r.ID)
	var transitionErr *domain.TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, "ABIERTA", transitionErr.From)
	assert.Equal(t, "APROBADA", transitionErr.To)

	_, err = f.rendiciones.RejectReconciliation(ctx, r.ID, "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.rendiciones.CloseReconciliation(ctx, r.ID)
	require.NoError(t, err)

	_, err = f.rendiciones.RejectReconciliation(ctx, r.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.rendiciones.GetReconciliation(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReconciliationClosed, got.Status)
}

func TestReconciliationUseCase_ConcurrentCreate(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx()
	card, _ := f.card(t, domain.CardTypePrepaid)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrConflictingReconciliation):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestReconciliationUseCase_RejectReleasesExpensesForNextBatch(t *testing.T) {
	f := newFixture(t)
	ctx := actorCtx()
	card, _ := f.card(t, domain.CardTypePrepaid)

	for _, day := range []int{3, 4} {
		_, err := f.cards.CreateExpense(ctx, card.ID, usecase.CardMovementInput{Amount: dec("50"), Date: date(time.January, day)})
		require.NoError(t, err)
	}

	first, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
	require.NoError(t, err)
	_, err = f.rendiciones.CloseReconciliation(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.rendiciones.RejectReconciliation(ctx, first.ID, "missing receipts")
	require.NoError(t, err)

	released, err := f.rendiciones.ListExpenses(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Empty(t, released)

	second, err := f.rendiciones.CreateReconciliation(ctx, januaryWindow(card.ID))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ExpenseCount)
	assert.True(t, second.TotalAmount.Equal(dec("100")))

	list, err := f.rendiciones.ListByCard(context.Background(), card.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}
