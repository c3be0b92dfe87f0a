package elasticbuf

import (
	"fmt"

	"github.com/sarchlab/elasticbuf/hooking"
	"github.com/sarchlab/elasticbuf/naming"
)

// DefaultWidth is the element width used when none is given.
const DefaultWidth = 8

// Builder builds Buffers.
type Builder struct {
	width int
}

// MakeBuilder creates a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		width: DefaultWidth,
	}
}

// WithWidth sets the number of bits in an element, from 1 to 64.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// Build creates a Buffer. The buffer starts as if reset had just been
// asserted: empty, with both outputs low.
func (b Builder) Build(name string) *Buffer {
	naming.NameMustBeValid(name)

	if b.width < 1 || b.width > 64 {
		panic(fmt.Sprintf("elasticbuf: width %d out of range [1, 64]", b.width))
	}

	return &Buffer{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		width:        b.width,
		mask:         widthMask(b.width),
	}
}

func widthMask(width int) Element {
	if width == 64 {
		return ^Element(0)
	}

	return Element(1)<<width - 1
}
