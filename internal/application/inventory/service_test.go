package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domevent "github.com/minhngo-dev/stock-tally/internal/domain/event"
	dominv "github.com/minhngo-dev/stock-tally/internal/domain/inventory"
	domjournal "github.com/minhngo-dev/stock-tally/internal/domain/journal"
)

// Mock SnapshotRepository
type mockRepo struct {
	saved    []dominv.Snapshot
	loadSnap dominv.Snapshot
	loadErr  error
	saveErr  error
}

func (m *mockRepo) Load(ctx context.Context) (dominv.Snapshot, error) {
	return m.loadSnap, m.loadErr
}

func (m *mockRepo) Save(ctx context.Context, snap dominv.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, snap)
	return nil
}

// Mock Publisher
type mockPublisher struct {
	events []domevent.Event
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, e domevent.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

// Mock journal sink
type mockSink struct {
	entries []domjournal.Entry
}

func (m *mockSink) Append(e domjournal.Entry) {
	m.entries = append(m.entries, e)
}

func newTestService(repo *mockRepo, pub *mockPublisher, sink *mockSink) (*Service, *dominv.Store) {
	store := dominv.NewStore()
	return NewService(store, repo, sink, pub, nil), store
}

func TestService_AddStock(t *testing.T) {
	sink := &mockSink{}
	pub := &mockPublisher{}
	svc, store := newTestService(&mockRepo{}, pub, sink)
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 10))

	assert.Equal(t, 10, store.Quantity("apple"))
	require.Len(t, sink.entries, 1)
	assert.Equal(t, "Added 10 of apple", sink.entries[0].Message)
	assert.NotEmpty(t, sink.entries[0].ID)

	require.Len(t, pub.events, 1)
	evt, ok := pub.events[0].(dominv.StockAddedEvent)
	require.True(t, ok)
	assert.Equal(t, "apple", evt.Item)
	assert.Equal(t, 10, evt.Quantity)
	assert.Equal(t, 10, evt.NewQuantity)
}

func TestService_AddStockRejected(t *testing.T) {
	sink := &mockSink{}
	pub := &mockPublisher{}
	svc, store := newTestService(&mockRepo{}, pub, sink)

	err := svc.AddStock(context.Background(), "  ", 3)
	assert.ErrorIs(t, err, dominv.ErrInvalidItem)

	// No state change, no journal entry, no event.
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, sink.entries)
	assert.Empty(t, pub.events)
}

func TestService_RemoveStock(t *testing.T) {
	pub := &mockPublisher{}
	svc, store := newTestService(&mockRepo{}, pub, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 10))
	require.NoError(t, svc.RemoveStock(ctx, "apple", 3))

	assert.Equal(t, 7, store.Quantity("apple"))

	evt, ok := pub.events[len(pub.events)-1].(dominv.StockRemovedEvent)
	require.True(t, ok)
	assert.Equal(t, 7, evt.Remaining)
	assert.False(t, evt.Depleted)
}

func TestService_RemoveStockMissingIsNotAnError(t *testing.T) {
	pub := &mockPublisher{}
	svc, store := newTestService(&mockRepo{}, pub, &mockSink{})

	require.NoError(t, svc.RemoveStock(context.Background(), "orange", 1))
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, pub.events)
}

func TestService_RemoveStockDepletes(t *testing.T) {
	pub := &mockPublisher{}
	svc, store := newTestService(&mockRepo{}, pub, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 3))
	require.NoError(t, svc.RemoveStock(ctx, "apple", 5))

	assert.Equal(t, 0, store.Quantity("apple"))
	assert.Equal(t, 0, store.Len())

	evt, ok := pub.events[len(pub.events)-1].(dominv.StockRemovedEvent)
	require.True(t, ok)
	assert.True(t, evt.Depleted)
	assert.Equal(t, 0, evt.Remaining)
}

func TestService_SaveSnapshotsStore(t *testing.T) {
	repo := &mockRepo{}
	svc, _ := newTestService(repo, &mockPublisher{}, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 7))
	require.NoError(t, svc.AddStock(ctx, "banana", 1))
	require.NoError(t, svc.Save(ctx))

	require.Len(t, repo.saved, 1)
	assert.Equal(t, dominv.Snapshot{
		{Name: "apple", Quantity: 7},
		{Name: "banana", Quantity: 1},
	}, repo.saved[0])
}

func TestService_SaveFailureKeepsStore(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("disk full")}
	svc, store := newTestService(repo, &mockPublisher{}, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 7))
	assert.Error(t, svc.Save(ctx))
	assert.Equal(t, 7, store.Quantity("apple"))
}

func TestService_LoadReplacesStore(t *testing.T) {
	repo := &mockRepo{loadSnap: dominv.Snapshot{{Name: "cherry", Quantity: 4}}}
	pub := &mockPublisher{}
	svc, store := newTestService(repo, pub, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 7))
	require.NoError(t, svc.Load(ctx))

	// Wholesale replacement, never a merge.
	assert.Equal(t, 0, store.Quantity("apple"))
	assert.Equal(t, 4, store.Quantity("cherry"))

	evt, ok := pub.events[len(pub.events)-1].(dominv.SnapshotLoadedEvent)
	require.True(t, ok)
	assert.Equal(t, 1, evt.Items)
}

func TestService_LoadMissingFileResetsWithoutError(t *testing.T) {
	repo := &mockRepo{loadErr: fmt.Errorf("%w: inventory.json", dominv.ErrSnapshotNotFound)}
	svc, store := newTestService(repo, &mockPublisher{}, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 7))
	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestService_LoadCorruptFileResets(t *testing.T) {
	repo := &mockRepo{loadErr: fmt.Errorf("%w: inventory.json", dominv.ErrSnapshotCorrupt)}
	svc, store := newTestService(repo, &mockPublisher{}, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 7))
	assert.ErrorIs(t, svc.Load(ctx), dominv.ErrSnapshotCorrupt)
	assert.Equal(t, 0, store.Len())
}

func TestService_Report(t *testing.T) {
	svc, _ := newTestService(&mockRepo{}, &mockPublisher{}, &mockSink{})
	ctx := context.Background()

	require.NoError(t, svc.AddStock(ctx, "apple", 7))
	require.NoError(t, svc.AddStock(ctx, "banana", 1))

	var buf bytes.Buffer
	require.NoError(t, svc.Report(ctx, &buf))
	assert.Equal(t, "Items Report\napple -> 7\nbanana -> 1\n", buf.String())
}

func TestService_Scenario(t *testing.T) {
	svc, _ := newTestService(&mockRepo{}, &mockPublisher{}, &mockSink{})
	ctx := context.Background()

	_ = svc.AddStock(ctx, "apple", 10)
	_ = svc.AddStock(ctx, "banana", -2)
	_ = svc.AddStock(ctx, "banana", 3)
	_ = svc.RemoveStock(ctx, "apple", 3)
	_ = svc.RemoveStock(ctx, "orange", 1)

	assert.Equal(t, 7, svc.Quantity(ctx, "apple"))
	assert.Equal(t, 1, svc.Quantity(ctx, "banana"))
	assert.Equal(t, 0, svc.Quantity(ctx, "orange"))
	assert.Equal(t, []string{"banana"}, svc.LowStock(ctx, dominv.DefaultLowStockThreshold))
}
