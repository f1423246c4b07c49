package simulation

import "testing"

func TestSeatsSoldDegenerate(t *testing.T) {
	src := NewSource(1)

	cases := []struct {
		name string
		n    int
		p    float64
		want int
	}{
		{"no seats", 0, 0.9, 0},
		{"negative seats", -3, 0.9, 0},
		{"zero probability", 120, 0, 0},
		{"negative probability", 120, -0.1, 0},
		{"certain", 120, 1, 120},
		{"above one", 120, 1.5, 120},
	}
	for _, tc := range cases {
		if got := SeatsSold(src, tc.n, tc.p); got != tc.want {
			t.Fatalf("%s: SeatsSold(%d, %.2f) = %d, want %d", tc.name, tc.n, tc.p, got, tc.want)
		}
	}
}

func TestSeatsSoldDrawsOncePerSeat(t *testing.T) {
	src := &countingSource{Source: NewSource(3)}
	SeatsSold(src, 180, 0.8)
	if src.uniform != 180 {
		t.Fatalf("expected 180 uniform draws, got %d", src.uniform)
	}
}

func TestSeatsSoldWithinCapacityAndGrowsWithLoad(t *testing.T) {
	src := NewSource(42)
	const n, trials = 100, 2000

	mean := func(p float64) float64 {
		total := 0
		for i := 0; i < trials; i++ {
			sold := SeatsSold(src, n, p)
			if sold < 0 || sold > n {
				t.Fatalf("seats sold %d outside [0, %d]", sold, n)
			}
			total += sold
		}
		return float64(total) / trials
	}

	low, high := mean(0.5), mean(0.9)
	if low < 45 || low > 55 {
		t.Fatalf("mean at p=0.5 is %.2f, expected near 50", low)
	}
	if high < 87 || high > 93 {
		t.Fatalf("mean at p=0.9 is %.2f, expected near 90", high)
	}
	if high <= low {
		t.Fatalf("expected demand to grow with load factor: %.2f <= %.2f", high, low)
	}
}

func TestSeatNumbersDistinctWithinCapacity(t *testing.T) {
	src := NewSource(7)
	for k := 0; k <= 10; k++ {
		seats := seatNumbers(src, 10, k)
		if len(seats) != k {
			t.Fatalf("k=%d: got %d seats", k, len(seats))
		}
		seen := map[int]bool{}
		for _, s := range seats {
			if s < 1 || s > 10 {
				t.Fatalf("seat %d outside 1..10", s)
			}
			if seen[s] {
				t.Fatalf("seat %d drawn twice", s)
			}
			seen[s] = true
		}
	}
}

type countingSource struct {
	Source
	uniform int
}

func (c *countingSource) Float64() float64 {
	c.uniform++
	return c.Source.Float64()
}
