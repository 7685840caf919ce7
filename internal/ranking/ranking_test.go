package ranking

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apps(gpas ...float64) []Application {
	out := make([]Application, len(gpas))
	for i, g := range gpas {
		out[i] = Application{Identity: string(rune('a' + i)), GPA: g}
	}
	return out
}

func TestRankTieKeepsInputOrder(t *testing.T) {
	got := Rank(3, apps(3.8, 3.2, 3.2, 2.9))
	require.Len(t, got, 4)

	wantIDs := []string{"a", "b", "c", "d"}
	wantWithin := []bool{true, true, true, false}
	for i, r := range got {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, wantIDs[i], r.Identity)
		assert.Equal(t, wantWithin[i], r.WithinCapacity, "rank %d", r.Rank)
	}
}

func TestRankSortsDescending(t *testing.T) {
	in := apps(2.1, 4.0, 3.3, 0.5, 3.3, 4.3)
	got := Rank(2, in)

	require.Len(t, got, len(in))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].GPA, got[i].GPA)
	}
	// equal 3.3s: "c" came before "e" in the input
	assert.Equal(t, "c", got[2].Identity)
	assert.Equal(t, "e", got[3].Identity)
}

func TestRankDoesNotMutateInput(t *testing.T) {
	in := apps(1.0, 3.0, 2.0)
	before := append([]Application(nil), in...)
	_ = Rank(1, in)
	assert.Equal(t, before, in)
}

func TestRankCapacityNormalization(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
	}{
		{name: "zero", capacity: 0},
		{name: "negative", capacity: -4},
		{name: "one", capacity: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.capacity, apps(3.0, 2.0, 1.0))
			require.Len(t, got, 3)
			assert.True(t, got[0].WithinCapacity)
			assert.False(t, got[1].WithinCapacity)
			assert.False(t, got[2].WithinCapacity)
		})
	}
}

func TestRankEmpty(t *testing.T) {
	got := Rank(5, nil)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestRankOutOfDomainValues(t *testing.T) {
	got := Rank(2, apps(5.2, -1, math.NaN(), 3.0))
	ids := []string{got[0].Identity, got[1].Identity, got[2].Identity, got[3].Identity}
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids)
}

func TestRankIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	in := make([]Application, 200)
	for i := range in {
		// two-decimal GPAs so ties are common
		in[i] = Application{Identity: string(rune(0x4e00 + i)), GPA: float64(r.Intn(431)) / 100}
	}
	first := Rank(40, in)
	second := Rank(40, in)
	assert.Equal(t, first, second)
}

func TestRankPermutationProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := 0; n < 60; n++ {
		in := make([]Application, n)
		for i := range in {
			in[i] = Application{Identity: string(rune('A' + i)), GPA: float64(r.Intn(20)) / 4}
		}
		c := 1 + r.Intn(10)
		got := Rank(c, in)

		require.Len(t, got, n)
		seen := map[int]bool{}
		for i, a := range got {
			assert.Equal(t, i+1, a.Rank)
			assert.False(t, seen[a.Rank])
			seen[a.Rank] = true
			assert.Equal(t, a.Rank <= c, a.WithinCapacity)
		}
	}
}

func TestFind(t *testing.T) {
	ranked := Rank(1, apps(2.0, 3.0))
	r, ok := Find(ranked, "a")
	require.True(t, ok)
	assert.Equal(t, 2, r.Rank)

	_, ok = Find(ranked, "zz")
	assert.False(t, ok)
}
