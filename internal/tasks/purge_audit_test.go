package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	retention time.Duration
	deleted   int64
	err       error
	calls     chan time.Duration
}

func (f *fakeCleaner) DeleteOldEvents(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	if f.calls != nil {
		f.calls <- retention
	}
	return f.deleted, f.err
}

func TestPurgeAuditTaskConfig(t *testing.T) {
	cfg := PurgeAuditTask{}.Config()

	assert.Equal(t, "purge_book_audit", cfg.Name)
	assert.Equal(t, 2, cfg.MaxAttempts)
	require.NotNil(t, cfg.Retention)
	assert.True(t, cfg.Retention.OnlyFailed)
}

func TestAuditPurger_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("task days win over configured retention", func(t *testing.T) {
		events := &fakeCleaner{deleted: 4}
		err := NewAuditPurger(events, 30).Purge(ctx, PurgeAuditTask{KeepDays: 7})
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, events.retention)
	})

	t.Run("zero days uses configured retention", func(t *testing.T) {
		events := &fakeCleaner{}
		err := NewAuditPurger(events, 90).Purge(ctx, PurgeAuditTask{})
		require.NoError(t, err)
		assert.Equal(t, 90*24*time.Hour, events.retention)
	})

	t.Run("no retention anywhere", func(t *testing.T) {
		events := &fakeCleaner{}
		err := NewAuditPurger(events, 0).Purge(ctx, PurgeAuditTask{})
		require.Error(t, err)
		assert.Zero(t, events.retention)
	})

	t.Run("delete failure is returned for retry", func(t *testing.T) {
		events := &fakeCleaner{err: errors.New("disk full")}
		err := NewAuditPurger(events, 30).Purge(ctx, PurgeAuditTask{KeepDays: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Contains(t, err.Error(), "1 days")
	})
}

func TestEnqueueAuditCleanup(t *testing.T) {
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	events := &fakeCleaner{calls: make(chan time.Duration, 1)}
	client.Register(NewAuditPurger(events, 30).Queue())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	id, err := client.EnqueueAuditCleanup(2)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case retention := <-events.calls:
		assert.Equal(t, 48*time.Hour, retention)
	case <-time.After(5 * time.Second):
		t.Fatal("purge was not executed within timeout")
	}
}

var _ backlite.Task = PurgeAuditTask{}
