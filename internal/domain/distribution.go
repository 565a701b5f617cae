package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Distribution maps buckets to the percentage of a stream they receive.
// Percentages never sum above 100; the rest stays unallocated.
type Distribution struct {
	StreamID    string
	Percentages map[Bucket]decimal.Decimal
	UpdatedAt   time.Time
}

// NewDistribution validates percentages and returns a distribution owning
// its own copy of them.
func NewDistribution(streamID string, percentages map[Bucket]decimal.Decimal, at time.Time) (*Distribution, error) {
	d := &Distribution{
		StreamID:    streamID,
		Percentages: make(map[Bucket]decimal.Decimal, len(percentages)),
		UpdatedAt:   at,
	}
	for b, p := range percentages {
		d.Percentages[b] = p
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// Validate checks bucket keys, per-bucket range and the overall sum.
func (d *Distribution) Validate() error {
	for b, p := range d.Percentages {
		if !b.Valid() {
			return fmt.Errorf("%w: unknown bucket %q", ErrInvalidDistribution, b)
		}
		if p.IsNegative() || p.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s percentage %s outside [0,100]", ErrInvalidDistribution, b, p)
		}
		if exceedsPlaces(p, PercentPlaces) {
			return fmt.Errorf("%w: %s percentage %s has more than %d decimal places", ErrInvalidDistribution, b, p, PercentPlaces)
		}
	}

	if total := d.Total(); total.GreaterThan(hundred) {
		return fmt.Errorf("%w: percentages sum to %s", ErrInvalidDistribution, total)
	}

	return nil
}

// Total returns the sum of all percentages.
func (d *Distribution) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Percentages {
		total = total.Add(p)
	}
	return total
}

// Percentage returns the share of b, zero when unset.
func (d *Distribution) Percentage(b Bucket) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Percentages[b]
}

// Clone returns a deep copy.
func (d *Distribution) Clone() *Distribution {
	c := &Distribution{
		StreamID:    d.StreamID,
		Percentages: make(map[Bucket]decimal.Decimal, len(d.Percentages)),
		UpdatedAt:   d.UpdatedAt,
	}
	for b, p := range d.Percentages {
		c.Percentages[b] = p
	}
	return c
}

// Allocation is the result of applying a distribution to a stream amount.
type Allocation struct {
	StreamID    string
	Amount      decimal.Decimal
	Buckets     map[Bucket]decimal.Decimal
	Unallocated decimal.Decimal
}

// Allocate splits amount over every bucket. A nil distribution yields zero
// for each bucket.
func (d *Distribution) Allocate(streamID string, amount decimal.Decimal) Allocation {
	a := Allocation{
		StreamID: streamID,
		Amount:   amount,
		Buckets:  make(map[Bucket]decimal.Decimal, len(Buckets)),
	}

	allocated := decimal.Zero
	for _, b := range Buckets {
		share := RoundMoney(amount.Mul(d.Percentage(b)).Div(hundred))
		a.Buckets[b] = share
		allocated = allocated.Add(share)
	}
	// Half-away rounding can overshoot the amount by a cent.
	a.Unallocated = decimal.Max(decimal.Zero, amount.Sub(allocated))

	return a
}
