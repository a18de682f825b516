package services

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

const (
	ticketSuffixMin = 1000
	ticketSuffixMax = 9999
)

// TicketGenerator mints human-readable ticket numbers of the form
// PREFIX-YYYYMMDD-HHMM-NNNN. Uniqueness is enforced by the database, not here.
type TicketGenerator struct {
	Prefix string
	Now    func() time.Time
	Suffix func() int
}

// NewTicketGenerator uses the wall clock and a seeded random suffix.
func NewTicketGenerator(prefix string) *TicketGenerator {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	return &TicketGenerator{
		Prefix: prefix,
		Now:    time.Now,
		Suffix: func() int {
			mu.Lock()
			defer mu.Unlock()
			return ticketSuffixMin + rng.Intn(ticketSuffixMax-ticketSuffixMin+1)
		},
	}
}

// Next returns a fresh ticket number.
func (g *TicketGenerator) Next() string {
	now := g.Now()
	return fmt.Sprintf("%s-%s-%04d", g.Prefix, now.Format("20060102-1504"), g.Suffix())
}
