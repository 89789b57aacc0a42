package upstreamsim

import (
	"fmt"
	"hash/fnv"
	"math"
	"time"
)

const dateLayout = "2006-01-02"

// professions builds the simulated directory.
func professions(n int) []Profession {
	if n <= 0 {
		n = DefaultProfessions
	}
	out := make([]Profession, n)
	for i := range out {
		id := i + 1
		out[i] = Profession{
			ID:     id,
			Name:   professionNames[i%len(professionNames)],
			Active: id%inactiveEvery != 0,
			Price:  basePrice + float64(id)*pricePerID,
		}
	}
	return out
}

// seed hashes the parts into a stable pseudo-random number.
func seed(parts ...interface{}) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		_, _ = fmt.Fprint(h, p, "|")
	}
	return h.Sum32()
}

// Hour is the activity of one profession during one hour.
type Hour struct {
	Leads     float64
	Purchases float64
	Revenue   float64
}

// Activity returns the deterministic activity of p at day and hour.
func Activity(p Profession, day time.Time, hour int) Hour {
	key := day.Format(dateLayout)
	leads := float64(seed(p.ID, key, hour, "leads") % maxLeadsPerHour)
	var purchases float64
	if leads > 0 && seed(p.ID, key, hour, "purchases")%3 == 0 {
		purchases = 1
	}
	return Hour{
		Leads:     leads,
		Purchases: purchases,
		Revenue:   math.Round(purchases*p.Price*100) / 100,
	}
}

// Sessions returns the deterministic session count of a day. A zero id means
// every profession.
func Sessions(id int, day time.Time) float64 {
	return float64(minSessionsPerDay + seed(id, day.Format(dateLayout), "sessions")%sessionSpread)
}

// days lists the calendar days from..to inclusive.
func days(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// previousRange returns the equal-length range ending the day before from.
func previousRange(from, to time.Time) (time.Time, time.Time) {
	n := len(days(from, to))
	prevTo := from.AddDate(0, 0, -1)
	return prevTo.AddDate(0, 0, -(n - 1)), prevTo
}

// Expected sums the activity of the given professions over from..to. No ids
// means every profession of the server.
func (s *Server) Expected(from, to time.Time, ids ...int) Hour {
	want := map[int]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var sum Hour
	for _, p := range s.profs {
		if len(want) > 0 && !want[p.ID] {
			continue
		}
		for _, d := range days(from, to) {
			for h := 0; h < 24; h++ {
				a := Activity(p, d, h)
				sum.Leads += a.Leads
				sum.Purchases += a.Purchases
				sum.Revenue += a.Revenue
			}
		}
	}
	return sum
}
