package diag

import "slices"

// Bag is an unsynchronised diagnostic buffer. Each engine worker owns one
// and hands it to the Collector once per batch.
type Bag struct {
	items []Diagnostic
}

func NewBag(capHint int) *Bag {
	return &Bag{items: make([]Diagnostic, 0, max(capHint, 0))}
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Truncate drops everything after the first n items.
func (b *Bag) Truncate(n int) {
	if n < len(b.items) {
		clear(b.items[n:])
		b.items = b.items[:n]
	}
}

// Reset empties the bag keeping its storage.
func (b *Bag) Reset() {
	b.Truncate(0)
}

// Sort orders diagnostics by location, rule code and insertion sequence.
// Distinct diagnostics never tie on Seq, so the result is total.
func Sort(ds []Diagnostic) {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		return Compare(&a, &b)
	})
}
