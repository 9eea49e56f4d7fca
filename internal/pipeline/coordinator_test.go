package pipeline

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/rfp-pipeline/internal/errors"
	eventsDomain "github.com/allisson/rfp-pipeline/internal/events/domain"
	workItemDomain "github.com/allisson/rfp-pipeline/internal/workitem/domain"
)

func noopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, snapshot workItemDomain.Snapshot) (workItemDomain.StageResult, error) {
		return workItemDomain.StageResult{Status: workItemDomain.StageResultCompleted}, nil
	})
}

func defaultHandlerRegistry() map[string]Handler {
	handlers := map[string]Handler{}
	for _, transition := range DefaultTransitions() {
		handlers[transition.StageKey] = noopHandler()
	}
	return handlers
}

func testCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Replicas:     1,
		RestartDelay: 10 * time.Millisecond,
		Consumer:     testConsumerConfig(),
	}
}

func newTestCoordinator(t *testing.T, config CoordinatorConfig) (*Coordinator, *stubEventStore) {
	t.Helper()

	store := newStubEventStore()
	coordinator, err := NewCoordinator(
		DefaultTransitions(), defaultHandlerRegistry(), config,
		passthroughTxManager(), store, newStubWorkItems(), nil, discardLogger(),
	)
	require.NoError(t, err)
	return coordinator, store
}

func TestNewCoordinator(t *testing.T) {
	coordinator, _ := newTestCoordinator(t, testCoordinatorConfig())
	assert.NotNil(t, coordinator)

	// One consumer per transition with a single replica
	assert.Len(t, coordinator.Health(), len(DefaultTransitions()))
}

func TestNewCoordinator_Replicas(t *testing.T) {
	config := testCoordinatorConfig()
	config.Replicas = 3

	coordinator, _ := newTestCoordinator(t, config)
	assert.Len(t, coordinator.Health(), 3*len(DefaultTransitions()))
}

func TestNewCoordinator_ZeroReplicasDefaultsToOne(t *testing.T) {
	config := testCoordinatorConfig()
	config.Replicas = 0

	coordinator, _ := newTestCoordinator(t, config)
	assert.Len(t, coordinator.Health(), len(DefaultTransitions()))
}

func TestNewCoordinator_DuplicateWatchedType(t *testing.T) {
	transitions := DefaultTransitions()
	duplicate := transitions[0]
	duplicate.StageKey = "qualification_bis"
	transitions = append(transitions, duplicate)

	handlers := defaultHandlerRegistry()
	handlers["qualification_bis"] = noopHandler()

	_, err := NewCoordinator(
		transitions, handlers, testCoordinatorConfig(),
		passthroughTxManager(), newStubEventStore(), newStubWorkItems(), nil, discardLogger(),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "duplicate consumer configuration")
}

func TestNewCoordinator_MissingHandler(t *testing.T) {
	handlers := defaultHandlerRegistry()
	delete(handlers, StageKeyPricing)

	_, err := NewCoordinator(
		DefaultTransitions(), handlers, testCoordinatorConfig(),
		passthroughTxManager(), newStubEventStore(), newStubWorkItems(), nil, discardLogger(),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestCoordinator_StartStopsOnCancel(t *testing.T) {
	coordinator, _ := newTestCoordinator(t, testCoordinatorConfig())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- coordinator.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not stop after cancellation")
	}
}

func TestCoordinator_Health(t *testing.T) {
	coordinator, _ := newTestCoordinator(t, testCoordinatorConfig())

	health := coordinator.Health()
	require.Len(t, health, len(DefaultTransitions()))

	stageKeys := map[string]bool{}
	for _, entry := range health {
		stageKeys[entry.StageKey] = true
		assert.NotEmpty(t, entry.OwnerID)
		assert.Equal(t, int64(0), entry.LastPoll.UnixNano(), "replica has not polled yet")
	}
	for _, transition := range DefaultTransitions() {
		assert.True(t, stageKeys[transition.StageKey], "missing health entry for %s", transition.StageKey)
	}
}

func TestCoordinator_HealthReflectsPolling(t *testing.T) {
	coordinator, _ := newTestCoordinator(t, testCoordinatorConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- coordinator.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		for _, entry := range coordinator.Health() {
			if entry.LastPoll.UnixNano() <= 0 {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "all replicas should have polled")

	cancel()
	<-done
}

func TestCoordinator_RestartsPanickedConsumer(t *testing.T) {
	item := discoveredItem(0.9)
	store := newStubEventStore()
	store.claimQueue = []*eventsDomain.Event{
		claimedEvent(t, eventsDomain.EventTypeIngested, item.ID, 1),
		claimedEvent(t, eventsDomain.EventTypeIngested, item.ID, 1),
	}

	var calls atomic.Int32
	handlers := map[string]Handler{
		StageKeyQualification: HandlerFunc(
			func(ctx context.Context, snapshot workItemDomain.Snapshot) (workItemDomain.StageResult, error) {
				if calls.Add(1) == 1 {
					panic("boom")
				}
				return workItemDomain.StageResult{Status: workItemDomain.StageResultCompleted}, nil
			}),
	}

	coordinator, err := NewCoordinator(
		DefaultTransitions()[:1], handlers, testCoordinatorConfig(),
		passthroughTxManager(), store, newStubWorkItems(item), nil, discardLogger(),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- coordinator.Start(ctx)
	}()

	// The first claim panics the handler; the supervisor restarts the replica,
	// which then processes the second claim successfully
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.published) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
