package langtag

// Pair is an ordered language direction: source first, target second.
// Pair is comparable and safe to use as a map key.
type Pair [2]Tag

// NewPair normalizes two raw tag strings into a direction.
func NewPair(src, tgt string, norm Normalizer) (Pair, error) {
	s, err := norm.Normalize(src)
	if err != nil {
		return Pair{}, err
	}
	t, err := norm.Normalize(tgt)
	if err != nil {
		return Pair{}, err
	}
	return Pair{s, t}, nil
}

// Swapped returns the reverse direction.
func (p Pair) Swapped() Pair { return Pair{p[1], p[0]} }

// String renders the pair joined by "-", matching the trailing segment of a
// canonical dataset identifier.
func (p Pair) String() string {
	return p[0].String() + "-" + p[1].String()
}

// Equal reports whether both tags match in order.
func (p Pair) Equal(other Pair) bool { return p == other }
