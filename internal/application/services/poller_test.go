package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticker-cache-service/internal/domain/entities"
	"ticker-cache-service/internal/domain/failures"
	"ticker-cache-service/internal/infrastructure/logging"
)

func TestAvailabilityPolicy_View(t *testing.T) {
	clock := newManualClock()
	calls := 0
	src := &fakeSource{respond: func(int32) ([]entities.RawRecord, error) {
		calls++
		if calls > 1 {
			return nil, failures.ErrTransport
		}
		return []entities.RawRecord{{"id": "BTC", "price": "10"}}, nil
	}}
	sink := &MockFailureSink{}
	sink.On("ReportFailure", mock.Anything, mock.Anything).Maybe()
	c := newTestCache(t, src, clock, WithFailureSink(sink))

	policy := AvailabilityPolicy{StaleAfter: 5 * time.Minute, Now: clock.Now}

	v := policy.View(c, "BTC", "USD")
	assert.False(t, v.Found)
	assert.False(t, v.Available)
	assert.True(t, v.LastUpdated.IsZero())

	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	v = policy.View(c, "btc", "USD")
	assert.True(t, v.Found)
	assert.True(t, v.Available)
	assert.Equal(t, "10", v.Record.CurrentPrice.Decimal.String())

	// tracked but missing from the upstream body
	v = policy.View(c, "ETH", "USD")
	assert.False(t, v.Found)
	assert.False(t, v.Available)
	assert.False(t, v.LastUpdated.IsZero())

	// a failed refresh keeps data; only age makes it unavailable
	clock.Advance(2 * time.Minute)
	_, err = c.Refresh(context.Background())
	require.Error(t, err)
	v = policy.View(c, "BTC", "USD")
	assert.True(t, v.Available)
	assert.Equal(t, 2*time.Minute, v.Age)

	clock.Advance(4 * time.Minute)
	v = policy.View(c, "BTC", "USD")
	assert.True(t, v.Found)
	assert.False(t, v.Available)

	v = AvailabilityPolicy{Now: clock.Now}.View(c, "BTC", "USD")
	assert.True(t, v.Available, "zero StaleAfter never expires data")
}

func TestPoller_PollOnceSharesOneFetch(t *testing.T) {
	clock := newManualClock()
	src := &fakeSource{respond: func(int32) ([]entities.RawRecord, error) {
		return tickerBody(map[string]string{"BTC": "64000", "ETH": "3000"}), nil
	}}
	c := newTestCache(t, src, clock)
	p := NewPoller(c, 0, AvailabilityPolicy{Now: clock.Now})
	assert.Equal(t, DefaultPollInterval, p.interval)

	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, 1, src.Calls())

	views := p.Views()
	require.Len(t, views, 2)
	assert.Equal(t, "BTC", views[0].ID)
	assert.Equal(t, "ETH", views[1].ID)
	for _, v := range views {
		assert.True(t, v.Available)
		assert.Equal(t, "USD", v.Currency)
	}

	v, ok := p.View("eth")
	require.True(t, ok)
	assert.Equal(t, "3000", v.Record.CurrentPrice.Decimal.String())

	// inside the throttle window the poller only re-reads
	clock.Advance(10 * time.Second)
	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, 1, src.Calls())
}

func TestPoller_PollOnceToleratesFailures(t *testing.T) {
	src := &fakeSource{respond: func(int32) ([]entities.RawRecord, error) {
		return nil, errors.Join(failures.ErrMalformedPayload, errors.New("not an array"))
	}}
	sink := &MockFailureSink{}
	sink.On("ReportFailure", mock.Anything, mock.MatchedBy(func(ev failures.Event) bool {
		return ev.Kind == failures.KindPayload
	})).Once()
	c := newTestCache(t, src, newManualClock(), WithFailureSink(sink))
	p := NewPoller(c, time.Minute, AvailabilityPolicy{})

	require.NoError(t, p.PollOnce(context.Background()))
	sink.AssertExpectations(t)

	v, ok := p.View("BTC")
	require.True(t, ok)
	assert.False(t, v.Found)
	assert.False(t, v.Available)
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	src := &fakeSource{respond: func(int32) ([]entities.RawRecord, error) {
		return tickerBody(map[string]string{"BTC": "1"}), nil
	}}
	c, err := NewThrottledCache(src, nil, []string{"BTC"}, "usd", time.Hour)
	require.NoError(t, err)
	p := NewPoller(c, 10*time.Millisecond, AvailabilityPolicy{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := p.View("BTC")
		return ok
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, 1, src.Calls())
}

func TestLoggingFailureSink_ReportFailure(t *testing.T) {
	log := &mockTickerLogger{}
	stale := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cause := errors.New("boom")
	log.On("RefreshFailed", mock.Anything, "transport", cause, stale).Once()

	sink := NewLoggingFailureSink(log)
	sink.ReportFailure(context.Background(), failures.Event{Kind: failures.KindTransport, Err: cause, StaleSince: stale})
	log.AssertExpectations(t)
}

// mockTickerLogger only records RefreshFailed; other methods are not expected.
type mockTickerLogger struct {
	logging.TickerLogger
	mock.Mock
}

func (m *mockTickerLogger) RefreshFailed(ctx context.Context, kind string, err error, staleSince time.Time) {
	m.Called(ctx, kind, err, staleSince)
}
