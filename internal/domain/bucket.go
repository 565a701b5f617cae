package domain

// Bucket is one of the fixed spending buckets income is distributed into.
type Bucket string

const (
	BucketWolcc       Bucket = "wolcc"
	BucketSavings     Bucket = "savings"
	BucketInvestments Bucket = "investments"
	BucketTaxes       Bucket = "taxes"
	BucketSpending    Bucket = "spending"
)

// Buckets lists the fixed bucket set in display order.
var Buckets = []Bucket{
	BucketWolcc,
	BucketSavings,
	BucketInvestments,
	BucketTaxes,
	BucketSpending,
}

// Valid reports whether b belongs to the fixed bucket set.
func (b Bucket) Valid() bool {
	switch b {
	case BucketWolcc, BucketSavings, BucketInvestments, BucketTaxes, BucketSpending:
		return true
	}
	return false
}

func (b Bucket) String() string {
	return string(b)
}
