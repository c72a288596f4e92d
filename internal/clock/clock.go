package clock

import "time"

const (
	dateLayout = "2006-01-02"
	timeLayout = "03:04:05 PM"
)

// Stamp is the canonical rendering of one instant. Date alone is the
// attendance uniqueness key; Timestamp is the human-readable receipt and is
// never parsed back.
type Stamp struct {
	Date      string
	Time      string
	Timestamp string
}

// Clock supplies the current instant. Injected so tests can pin a date.
type Clock interface {
	Now() time.Time
}

// System reads the host clock in local time.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// StampAt renders a single instant; date and time are taken from the same
// moment so they can never disagree.
func StampAt(t time.Time) Stamp {
	return Stamp{
		Date:      t.Format(dateLayout),
		Time:      t.Format(timeLayout),
		Timestamp: t.Format(dateLayout + " " + timeLayout),
	}
}

// Now renders the clock's current instant.
func Now(c Clock) Stamp {
	return StampAt(c.Now())
}
