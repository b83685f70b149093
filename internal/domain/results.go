package domain

// Results is the append-only collection a harvest run fills.
// It is owned by a single run and is not safe for concurrent use.
type Results struct {
	items []Listing
}

func NewResults() *Results {
	return &Results{}
}

func (r *Results) Append(l Listing) {
	r.items = append(r.items, l)
}

func (r *Results) Len() int {
	return len(r.items)
}

// Items returns a copy of the collected listings in insertion order.
func (r *Results) Items() []Listing {
	out := make([]Listing, len(r.items))
	copy(out, r.items)
	return out
}

// Clear empties the collection so the owner can start another run.
func (r *Results) Clear() {
	r.items = nil
}
