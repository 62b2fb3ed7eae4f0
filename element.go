// Package dicom implements the element/dataset/sequence data model and the
// file-meta/dataset parser and pixel-data indexer built on top of it.
package dicom

import (
	"github.com/tanager-health/dicomcore/dicomerr"
	"github.com/tanager-health/dicomcore/dicomtag"
	"github.com/tanager-health/dicomcore/dicomvr"
)

// Element is a single DICOM attribute: a tag, its VR, declared byte
// length, value multiplicity, and the Value it owns.
type Element struct {
	Tag dicomtag.Tag

	vr        dicomvr.VR
	vm        int
	length    uint32
	value     *Value
	destroyed bool
}

// NewElement takes ownership of value and wraps it with tag. On success,
// the Element owns value; value must not be used again through any other
// reference. If value has already been destroyed, NewElement fails without
// side effects.
func NewElement(tag dicomtag.Tag, value *Value) (*Element, error) {
	if err := value.checkAlive(); err != nil {
		return nil, err
	}
	return &Element{
		Tag:    tag,
		vr:     value.VR(),
		vm:     value.VM(),
		length: value.Length(),
		value:  value,
	}, nil
}

// MustNewElement is like NewElement but panics on error.
func MustNewElement(tag dicomtag.Tag, value *Value) *Element {
	e, err := NewElement(tag, value)
	if err != nil {
		panic(err)
	}
	return e
}

// VR returns the element's value representation.
func (e *Element) VR() dicomvr.VR { return e.vr }

// VM returns the element's value multiplicity.
func (e *Element) VM() int { return e.vm }

// Length returns the element's declared byte length (always even).
func (e *Element) Length() uint32 {
	if e.destroyed {
		return 0
	}
	return e.length
}

// Value borrows the element's value. Returns nil if the element has been
// destroyed.
func (e *Element) Value() *Value {
	if e.destroyed {
		return nil
	}
	return e.value
}

// Destroy invalidates e and its owned Value (and, transitively, any
// sequence the value holds). Idempotent.
func (e *Element) Destroy() {
	if e == nil || e.destroyed {
		return
	}
	e.destroyed = true
	e.value.Destroy()
	e.value = nil
}

// IsDestroyed reports whether Destroy has been called on e.
func (e *Element) IsDestroyed() bool { return e == nil || e.destroyed }

// Clone deep-copies e; the clone shares no mutable state with e.
func (e *Element) Clone() *Element {
	if e == nil || e.destroyed {
		return nil
	}
	return &Element{
		Tag:    e.Tag,
		vr:     e.vr,
		vm:     e.vm,
		length: e.length,
		value:  e.value.Clone(),
	}
}

// String renders a short diagnostic description of the element.
func (e *Element) String() string {
	if e.destroyed {
		return e.Tag.String() + " <destroyed>"
	}
	return e.Tag.String() + " " + string(e.vr)
}

var errDestroyedElement = dicomerr.New(dicomerr.Malformed, "use of a destroyed element")
