package dicom

import (
	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomtag"
)

// Dataset is a tag-indexed, always-sorted-by-tag collection of Elements:
// the container backing both the file-meta group and the main dataset, and
// each item of a Sequence. Insert maintains sort order directly rather than
// hashing and sorting separately, since datasets here are small (dozens to
// low hundreds of elements) and every consumer (ForEach, CopyTags, Tags)
// wants ascending-tag order anyway.
type Dataset struct {
	elems     []*Element
	locked    bool
	destroyed bool
}

// NewDataset returns an empty, unlocked dataset.
func NewDataset() *Dataset { return &Dataset{} }

// search returns the index at which tag is present, or the index it would
// be inserted at to keep elems sorted, and whether it was found.
func (d *Dataset) search(tag dicomtag.Tag) (int, bool) {
	lo, hi := 0, len(d.elems)
	for lo < hi {
		mid := (lo + hi) / 2
		switch d.elems[mid].Tag.Compare(tag) {
		case 0:
			return mid, true
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// Insert takes ownership of elem and places it in tag order. On failure
// (the dataset is locked, or elem's tag is already present) elem is
// destroyed and the dataset is left unchanged.
func (d *Dataset) Insert(elem *Element) error {
	if err := d.checkAlive(); err != nil {
		elem.Destroy()
		return err
	}
	if d.locked {
		elem.Destroy()
		return dicomerr.New(dicomerr.Locked, "dataset is locked")
	}
	idx, found := d.search(elem.Tag)
	if found {
		elem.Destroy()
		return dicomerr.New(dicomerr.Duplicate, "tag %s is already present", elem.Tag)
	}
	d.elems = append(d.elems, nil)
	copy(d.elems[idx+1:], d.elems[idx:])
	d.elems[idx] = elem
	return nil
}

// Remove deletes and destroys the element at tag, if present. Returns
// false with no side effect if tag is absent. Fails if the dataset is
// locked.
func (d *Dataset) Remove(tag dicomtag.Tag) (bool, error) {
	if err := d.checkAlive(); err != nil {
		return false, err
	}
	if d.locked {
		return false, dicomerr.New(dicomerr.Locked, "dataset is locked")
	}
	idx, found := d.search(tag)
	if !found {
		return false, nil
	}
	d.elems[idx].Destroy()
	d.elems = append(d.elems[:idx], d.elems[idx+1:]...)
	return true, nil
}

// Get borrows the element at tag, or returns nil if absent. The returned
// Element must not outlive d; callers that need an independent copy
// should use GetClone.
func (d *Dataset) Get(tag dicomtag.Tag) *Element {
	if d.destroyed {
		return nil
	}
	idx, found := d.search(tag)
	if !found {
		return nil
	}
	return d.elems[idx]
}

// GetClone returns a deep copy of the element at tag, or nil if absent.
func (d *Dataset) GetClone(tag dicomtag.Tag) *Element {
	e := d.Get(tag)
	if e == nil {
		return nil
	}
	return e.Clone()
}

// Contains reports whether tag is present.
func (d *Dataset) Contains(tag dicomtag.Tag) bool {
	if d.destroyed {
		return false
	}
	_, found := d.search(tag)
	return found
}

// Count returns the number of elements.
func (d *Dataset) Count() int { return len(d.elems) }

// ForEach calls fn with each element in ascending tag order, stopping at
// the first error.
func (d *Dataset) ForEach(fn func(*Element) error) error {
	if err := d.checkAlive(); err != nil {
		return err
	}
	for _, e := range d.elems {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Lock freezes the dataset against further Insert/Remove. The parser locks
// every dataset (file-meta group, main dataset, and each sequence item) it
// produces; Sequence.Get also locks an item dataset before returning it.
func (d *Dataset) Lock() { d.locked = true }

// IsLocked reports whether Lock has been called.
func (d *Dataset) IsLocked() bool { return d.locked }

// CopyTags writes up to len(out) tags, in ascending order, into out and
// returns the number written.
func (d *Dataset) CopyTags(out []dicomtag.Tag) int {
	n := len(out)
	if n > len(d.elems) {
		n = len(d.elems)
	}
	for i := 0; i < n; i++ {
		out[i] = d.elems[i].Tag
	}
	return n
}

// Tags returns every tag present, in ascending order.
func (d *Dataset) Tags() []dicomtag.Tag {
	tags := make([]dicomtag.Tag, len(d.elems))
	d.CopyTags(tags)
	return tags
}

func (d *Dataset) checkAlive() error {
	if d == nil || d.destroyed {
		return dicomerr.New(dicomerr.Malformed, "use of a destroyed or nil dataset")
	}
	return nil
}

// Destroy invalidates d and recursively destroys every element (and,
// through each, any nested sequence) it owns. Idempotent.
func (d *Dataset) Destroy() {
	if d == nil || d.destroyed {
		return
	}
	d.destroyed = true
	for _, e := range d.elems {
		e.Destroy()
	}
	d.elems = nil
}

// Clone deep-copies d; the clone is unlocked regardless of d's lock state.
func (d *Dataset) Clone() *Dataset {
	if d == nil || d.destroyed {
		return nil
	}
	c := &Dataset{}
	for _, e := range d.elems {
		c.elems = append(c.elems, e.Clone())
	}
	return c
}

// sumElementLengths totals every element's declared length, used by a
// containing Sequence to compute its own declared length.
func (d *Dataset) sumElementLengths() uint32 {
	var total uint32
	for _, e := range d.elems {
		total += e.Length()
	}
	return total
}
