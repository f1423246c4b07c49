package simulation

// SeatsSold runs a binomial trial: one uniform draw per seat, each sold with
// probability p.
func SeatsSold(src Source, n int, p float64) int {
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}

	sold := 0
	for i := 0; i < n; i++ {
		if src.Float64() < p {
			sold++
		}
	}
	return sold
}

// seatNumbers draws k distinct seat numbers from 1..seats.
func seatNumbers(src Source, seats, k int) []int {
	k = min(k, seats)
	if k <= 0 {
		return nil
	}

	pool := make([]int, seats)
	for i := range pool {
		pool[i] = i + 1
	}
	// partial Fisher-Yates
	for i := 0; i < k; i++ {
		j := i + src.IntN(seats-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k:k]
}
