package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facemark/internal/clock"
	"facemark/internal/ledger"
	"facemark/internal/person"
	"facemark/internal/store"
)

func fixedClock(y int, m time.Month, d, hh, mm, ss int) clock.Fixed {
	return clock.Fixed{T: time.Date(y, m, d, hh, mm, ss, 0, time.Local)}
}

func registerAlice(t *testing.T, people *person.Service) int64 {
	t.Helper()
	id, err := people.Register(context.Background(), person.Registration{
		Name:           "Alice",
		Image:          "alice.jpg",
		Address:        "1 Main St",
		DOB:            "1990-05-01",
		Role:           "teacher",
		SectionOrStaff: "staff",
		PhoneNumber:    "555-0100",
	})
	require.NoError(t, err)
	return id
}

func TestCheckInUnknownName(t *testing.T) {
	mem := store.NewMemory()
	people := person.NewService(mem.People())
	svc := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 1, 9, 0, 0))

	_, err := svc.CheckIn(context.Background(), "Nobody")
	require.ErrorIs(t, err, ledger.ErrPersonNotFound)

	// No record may be created by a failed lookup.
	_, err = svc.ListAll(context.Background())
	require.ErrorIs(t, err, ledger.ErrNoRecords)
}

func TestCheckInOncePerDay(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	people := person.NewService(mem.People())
	registerAlice(t, people)

	day1 := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 1, 8, 30, 15))

	conf, err := day1.CheckIn(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", conf.Name)
	assert.Equal(t, "2024-01-01", conf.Date)
	assert.Equal(t, "2024-01-01 08:30:15 AM", conf.Timestamp)

	_, err = day1.CheckIn(ctx, "Alice")
	require.ErrorIs(t, err, ledger.ErrAlreadyMarked)

	// A later instant on the same date is still rejected.
	later := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 1, 17, 0, 0))
	_, err = later.CheckIn(ctx, "Alice")
	require.ErrorIs(t, err, ledger.ErrAlreadyMarked)

	// The next day opens a fresh gate.
	day2 := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 2, 8, 0, 0))
	conf, err = day2.CheckIn(ctx, "Alice")
	require.NoError(t, err)
	assert.Contains(t, conf.Timestamp, "2024-01-02")

	entries, err := day2.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2024-01-01", entries[0].Date)
	assert.Equal(t, "2024-01-02", entries[1].Date)
}

func TestCheckInConcurrent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	people := person.NewService(mem.People())
	registerAlice(t, people)

	svc := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 1, 9, 0, 0))

	const n = 50
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		marked   int
		rejected int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckIn(ctx, "Alice")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				marked++
			case errors.Is(err, ledger.ErrAlreadyMarked):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, marked, "exactly one check-in may win")
	assert.Equal(t, n-1, rejected)

	entries, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeletePersonCascades(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	people := person.NewService(mem.People())
	aliceID := registerAlice(t, people)

	bobID, err := people.Register(ctx, person.Registration{
		Name: "Bob", Image: "bob.jpg", Address: "2 Side St", DOB: "1985-03-02",
		Role: "student", SectionOrStaff: "section-a", PhoneNumber: "555-0101",
	})
	require.NoError(t, err)

	svc := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 1, 9, 0, 0))
	_, err = svc.CheckIn(ctx, "Alice")
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "Bob")
	require.NoError(t, err)

	require.NoError(t, people.Delete(ctx, aliceID))

	entries, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Bob", entries[0].Name)

	// Bob's gate is untouched by Alice's removal.
	_, err = svc.CheckIn(ctx, "Bob")
	require.ErrorIs(t, err, ledger.ErrAlreadyMarked)
	_ = bobID
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	people := person.NewService(mem.People())
	registerAlice(t, people)

	day1 := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 1, 9, 0, 0))
	day2 := ledger.NewService(mem.Ledger(), people, fixedClock(2024, 1, 2, 9, 0, 0))

	_, err := day1.CheckIn(ctx, "Alice")
	require.NoError(t, err)
	_, err = day2.CheckIn(ctx, "Alice")
	require.NoError(t, err)

	removed, err := day1.ClearAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = day1.ListAll(ctx)
	require.ErrorIs(t, err, ledger.ErrNoRecords)

	// Clearing empties the ledger entirely, so the day's gate is open again.
	conf, err := day1.CheckIn(ctx, "Alice")
	require.NoError(t, err)
	assert.Contains(t, conf.Timestamp, "2024-01-01")
}
