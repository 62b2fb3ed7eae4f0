package dicom

import "github.com/tanager-health/dicomcore/dicomerr"

// Sequence is the ordered list of item Datasets carried by an SQ-valued
// Value. Once Lock is called, Append and Remove fail rather than mutate.
// Neither the parser nor Dataset.Insert locks a sequence; the item
// datasets the parser builds are locked.
type Sequence struct {
	items     []*Dataset
	locked    bool
	destroyed bool
}

// NewSequence returns an empty, unlocked sequence.
func NewSequence() *Sequence { return &Sequence{} }

// Append adds item as the new last item. On failure (the sequence is
// locked), item is destroyed and the sequence is left unchanged.
func (s *Sequence) Append(item *Dataset) error {
	if err := s.checkAlive(); err != nil {
		item.Destroy()
		return err
	}
	if s.locked {
		item.Destroy()
		return dicomerr.New(dicomerr.Locked, "sequence is locked")
	}
	s.items = append(s.items, item)
	return nil
}

// Get returns the item at index, locked against further mutation before
// it is handed back, per the invariant that a borrowed item dataset must
// not be mutated out from under its owning sequence.
func (s *Sequence) Get(index int) (*Dataset, error) {
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.items) {
		return nil, dicomerr.New(dicomerr.OutOfRange, "sequence item index %d out of range (count=%d)", index, len(s.items))
	}
	item := s.items[index]
	item.Lock()
	return item, nil
}

// Remove deletes the item at index, destroying it. Fails if the sequence
// is locked or index is out of range.
func (s *Sequence) Remove(index int) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	if s.locked {
		return dicomerr.New(dicomerr.Locked, "sequence is locked")
	}
	if index < 0 || index >= len(s.items) {
		return dicomerr.New(dicomerr.OutOfRange, "sequence item index %d out of range (count=%d)", index, len(s.items))
	}
	s.items[index].Destroy()
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// Count returns the number of items.
func (s *Sequence) Count() int { return len(s.items) }

// Lock freezes the sequence against further Append/Remove.
func (s *Sequence) Lock() { s.locked = true }

// IsLocked reports whether Lock has been called.
func (s *Sequence) IsLocked() bool { return s.locked }

// ForEach calls fn with each item in order, stopping at the first error.
func (s *Sequence) ForEach(fn func(index int, item *Dataset) error) error {
	if err := s.checkAlive(); err != nil {
		return err
	}
	for i, item := range s.items {
		if err := fn(i, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequence) checkAlive() error {
	if s == nil || s.destroyed {
		return dicomerr.New(dicomerr.Malformed, "use of a destroyed or nil sequence")
	}
	return nil
}

// Destroy invalidates s and recursively destroys every item dataset (and,
// through each, every element and nested sequence it owns). Idempotent.
func (s *Sequence) Destroy() {
	if s == nil || s.destroyed {
		return
	}
	s.destroyed = true
	for _, item := range s.items {
		item.Destroy()
	}
	s.items = nil
}

// Clone deep-copies s; the clone is unlocked regardless of s's lock state.
func (s *Sequence) Clone() *Sequence {
	if s == nil || s.destroyed {
		return nil
	}
	c := &Sequence{}
	for _, item := range s.items {
		c.items = append(c.items, item.Clone())
	}
	return c
}

// declaredLength sums the declared length of every element in every item,
// matching the convention that a sequence's own declared length is the
// sum of its items' contents (never counting item/delimiter tag overhead,
// which this library never materializes on construction).
func (s *Sequence) declaredLength() uint32 {
	var total uint32
	for _, item := range s.items {
		total += item.sumElementLengths()
	}
	return total
}
