package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facemark/internal/ledger"
	"facemark/internal/person"
)

func seedPerson(t *testing.T, m *Memory, name string) int64 {
	t.Helper()
	id, err := m.People().Create(context.Background(), person.Registration{
		Name: name, Image: name + ".jpg", Address: "addr", DOB: "2000-01-01",
		Role: "student", SectionOrStaff: "section-a", PhoneNumber: "555",
	})
	require.NoError(t, err)
	return id
}

func TestMemoryInsertUniquePerPersonAndDate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	aliceID := seedPerson(t, m, "Alice")
	bobID := seedPerson(t, m, "Bob")

	rec := ledger.Record{PersonID: aliceID, Name: "Alice", Date: "2024-01-01", Time: "09:00:00 AM", Timestamp: "2024-01-01 09:00:00 AM"}
	id, err := m.Ledger().Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = m.Ledger().Insert(ctx, rec)
	require.ErrorIs(t, err, ledger.ErrAlreadyMarked)

	// Same date, different person: allowed.
	_, err = m.Ledger().Insert(ctx, ledger.Record{PersonID: bobID, Name: "Bob", Date: "2024-01-01", Time: "09:01:00 AM", Timestamp: "2024-01-01 09:01:00 AM"})
	require.NoError(t, err)

	// Same person, different date: allowed.
	_, err = m.Ledger().Insert(ctx, ledger.Record{PersonID: aliceID, Name: "Alice", Date: "2024-01-02", Time: "09:00:00 AM", Timestamp: "2024-01-02 09:00:00 AM"})
	require.NoError(t, err)
}

func TestMemoryInsertRace(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	aliceID := seedPerson(t, m, "Alice")

	const n = 100
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Ledger().Insert(ctx, ledger.Record{
				PersonID: aliceID, Name: "Alice", Date: "2024-01-01",
				Time: "09:00:00 AM", Timestamp: "2024-01-01 09:00:00 AM",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		if err == nil {
			ok++
		} else if assert.ErrorIs(t, err, ledger.ErrAlreadyMarked) {
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)

	entries, err := m.Ledger().List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMemoryDeleteCascade(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	aliceID := seedPerson(t, m, "Alice")
	bobID := seedPerson(t, m, "Bob")

	for _, rec := range []ledger.Record{
		{PersonID: aliceID, Name: "Alice", Date: "2024-01-01", Time: "09:00:00 AM", Timestamp: "2024-01-01 09:00:00 AM"},
		{PersonID: aliceID, Name: "Alice", Date: "2024-01-02", Time: "09:00:00 AM", Timestamp: "2024-01-02 09:00:00 AM"},
		{PersonID: bobID, Name: "Bob", Date: "2024-01-01", Time: "10:00:00 AM", Timestamp: "2024-01-01 10:00:00 AM"},
	} {
		_, err := m.Ledger().Insert(ctx, rec)
		require.NoError(t, err)
	}

	require.NoError(t, m.People().Delete(ctx, aliceID))

	_, err := m.People().Get(ctx, aliceID)
	assert.ErrorIs(t, err, person.ErrNotFound)

	entries, err := m.Ledger().List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bob", entries[0].Name)
}

func TestMemoryClearReportsCount(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	aliceID := seedPerson(t, m, "Alice")

	removed, err := m.Ledger().Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)

	_, err = m.Ledger().Insert(ctx, ledger.Record{PersonID: aliceID, Name: "Alice", Date: "2024-01-01", Time: "09:00:00 AM", Timestamp: "2024-01-01 09:00:00 AM"})
	require.NoError(t, err)

	removed, err = m.Ledger().Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	entries, err := m.Ledger().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
