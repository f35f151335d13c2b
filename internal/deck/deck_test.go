package deck

import (
	"testing"

	"github.com/lox/lastcard/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardComposition(t *testing.T) {
	cards := Standard()
	require.Len(t, cards, Size)

	counts := make(map[Card]int)
	for _, c := range cards {
		counts[c]++
	}

	for _, color := range Colors {
		assert.Equal(t, 1, counts[NewCard(color, Zero)], "one zero per color")
		for v := One; v <= Nine; v++ {
			assert.Equal(t, 2, counts[NewCard(color, v)], "two of %v %v", color, v)
		}
		assert.Equal(t, 2, counts[NewCard(color, Skip)])
		assert.Equal(t, 2, counts[NewCard(color, Reverse)])
		assert.Equal(t, 2, counts[NewCard(color, DrawTwo)])
	}
	assert.Equal(t, 4, counts[NewCard(Wild, ChangeColor)])
	assert.Equal(t, 4, counts[NewCard(Wild, DrawFour)])
	assert.Zero(t, counts[FaceDown], "deck never holds the face-down placeholder")
}

func TestDeckDeal(t *testing.T) {
	d := New(randutil.New(1))
	require.Equal(t, Size, d.Len())

	hand := d.DealN(7)
	assert.Len(t, hand, 7)
	assert.Equal(t, Size-7, d.Len())

	rest := d.DealN(1000)
	assert.Len(t, rest, Size-7)
	assert.True(t, d.IsEmpty())

	_, ok := d.Deal()
	assert.False(t, ok)
}

func TestDeckDealsFromTop(t *testing.T) {
	d := NewStacked(MustParseCards("r1 r2 r3"), randutil.New(1))
	c, ok := d.Deal()
	require.True(t, ok)
	assert.Equal(t, "r3", c.String())
}

func TestBury(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		d := NewStacked(MustParseCards("r1 r2 r3"), randutil.New(seed))
		d.Bury(NewCard(Wild, DrawFour))
		assert.Equal(t, 4, d.Len())

		top, ok := d.Deal()
		require.True(t, ok)
		assert.Equal(t, "r3", top.String(), "seed %d", seed)
		assert.Contains(t, d.Cards(), NewCard(Wild, DrawFour))
	}

	empty := NewStacked(nil, randutil.New(1))
	empty.Bury(NewCard(Wild, DrawFour))
	c, ok := empty.Deal()
	require.True(t, ok)
	assert.Equal(t, "W+4", c.String())
}

func TestReshuffle(t *testing.T) {
	rng := randutil.New(3)

	t.Run("keeps top card and moves the rest", func(t *testing.T) {
		d := NewStacked(nil, rng)
		var p Pile
		for _, c := range MustParseCards("r1 g2 b3 y4 r5") {
			p.Push(c)
		}

		require.NoError(t, Reshuffle(d, &p, rng))
		assert.Equal(t, 4, d.Len())
		assert.Equal(t, 1, p.Len())
		top, ok := p.Top()
		require.True(t, ok)
		assert.Equal(t, "r5", top.String())

		assert.ElementsMatch(t, MustParseCards("r1 g2 b3 y4"), d.DealN(4))
	})

	t.Run("single card discard pile is fatal", func(t *testing.T) {
		d := NewStacked(nil, rng)
		var p Pile
		p.Push(NewCard(Red, One))
		assert.ErrorIs(t, Reshuffle(d, &p, rng), ErrNothingToReshuffle)
		assert.Equal(t, 1, p.Len())
	})

	t.Run("empty discard pile is fatal", func(t *testing.T) {
		d := NewStacked(nil, rng)
		var p Pile
		assert.ErrorIs(t, Reshuffle(d, &p, rng), ErrNothingToReshuffle)
	})
}

// TestShuffleUniform checks that every permutation of four cards is produced
// with equal frequency using a chi-square goodness-of-fit test.
func TestShuffleUniform(t *testing.T) {
	const (
		runs  = 48000
		perms = 24
	)
	rng := randutil.New(20240601)
	base := MustParseCards("r1 g2 b3 y4")

	counts := make(map[string]int)
	for i := 0; i < runs; i++ {
		cards := append([]Card(nil), base...)
		Shuffle(cards, rng)
		key := ""
		for _, c := range cards {
			key += c.String()
		}
		counts[key]++
	}
	require.Len(t, counts, perms, "every permutation must appear")

	expected := float64(runs) / perms
	chi2 := 0.0
	for _, observed := range counts {
		diff := float64(observed) - expected
		chi2 += diff * diff / expected
	}

	// 23 degrees of freedom; 70 is far beyond the 1e-6 tail while a biased
	// shuffle lands in the thousands.
	assert.Less(t, chi2, 70.0, "chi-square %.2f suggests a biased shuffle", chi2)
}

func TestShuffleEveryPosition(t *testing.T) {
	rng := randutil.New(99)
	const runs = 20000
	firstSeen := make(map[Card]int)
	for i := 0; i < runs; i++ {
		cards := MustParseCards("r0 r1 r2 r3 r4 r5 r6 r7 r8 r9")
		Shuffle(cards, rng)
		firstSeen[cards[0]]++
	}
	require.Len(t, firstSeen, 10)
	for c, n := range firstSeen {
		assert.InDelta(t, runs/10, n, 300, "card %v led %d times", c, n)
	}
}
