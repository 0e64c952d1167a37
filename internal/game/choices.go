package game

import (
	"math/rand"
	"slices"

	"wfquiz/internal/catalog"
)

// Slot is one multiple-choice button as the display should render it.
type Slot struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
}

// Shuffle returns a Fisher-Yates shuffled copy of in.
func Shuffle[T any](rng *rand.Rand, in []T) []T {
	a := slices.Clone(in)
	for i := len(a) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
	return a
}

// BuildSlots places correct in a random slot of n and fills the rest from a
// shuffle of others. Slots left over when others runs out are hidden.
func BuildSlots(rng *rand.Rand, n int, correct catalog.Item, others []catalog.Item) []Slot {
	if n <= 0 {
		return nil
	}
	incorrect := Shuffle(rng, others)
	correctIndex := rng.Intn(n)
	slots := make([]Slot, n)
	next := 0
	for i := range slots {
		slots[i].Index = i
		switch {
		case i == correctIndex:
			slots[i].Label = correct.Name
			slots[i].Visible = true
		case next < len(incorrect):
			slots[i].Label = incorrect[next].Name
			slots[i].Visible = true
			next++
		}
	}
	return slots
}
