package domain

// BuildShuffledDeck turns a catalog list into a fresh session deck: a uniform
// Fisher-Yates permutation, a unique instance ID per card from newID, and an
// independent orientation draw per card.
//
// The orientation draw is reversed with probability 0.7, upright with 0.3.
// That skew is the shipped product behavior and is kept as-is.
func BuildShuffledDeck(defs []CardDefinition, rng RNG, newID func() string) []CardInstance {
	deck := make([]CardInstance, len(defs))
	for i, def := range defs {
		deck[i] = CardInstance{
			CardDefinition: def,
			InstanceID:     newID(),
			Orientation:    Upright,
		}
	}

	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	for i := range deck {
		if rng.Intn(10) < 7 {
			deck[i].Orientation = Reversed
		}
	}

	return deck
}
