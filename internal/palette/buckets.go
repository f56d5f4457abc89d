package palette

import (
	"fmt"
	"sort"
)

// Bucket colors every arrival time up to and including UpTo.
type Bucket struct {
	UpTo  float64
	Color string
}

// Buckets is a threshold palette: the first bucket whose UpTo is >= the time
// wins, and anything past the last threshold gets Overflow.
type Buckets struct {
	name     string
	buckets  []Bucket
	overflow string
}

// NewBuckets creates a threshold palette. Thresholds must be strictly ascending.
func NewBuckets(name string, buckets []Bucket, overflow string) (*Buckets, error) {
	for i := 1; i < len(buckets); i++ {
		if buckets[i].UpTo <= buckets[i-1].UpTo {
			return nil, fmt.Errorf("palette %s: bucket %d threshold %g not above %g", name, i, buckets[i].UpTo, buckets[i-1].UpTo)
		}
	}
	bs := make([]Bucket, len(buckets))
	copy(bs, buckets)
	return &Buckets{name: name, buckets: bs, overflow: overflow}, nil
}

func (b *Buckets) Name() string { return b.name }

func (b *Buckets) ColorFor(time float64) string {
	i := sort.Search(len(b.buckets), func(i int) bool { return b.buckets[i].UpTo >= time })
	if i == len(b.buckets) {
		return b.overflow
	}
	return b.buckets[i].Color
}
