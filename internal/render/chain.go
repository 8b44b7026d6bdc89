package render

import (
	"reflect"
	"slices"
)

// Processor transforms rendered markup. Implementations may read data but
// must not mutate it.
type Processor interface {
	Process(html string, data any) string
}

// funcProcessor gives a plain function pointer identity so it can be removed.
type funcProcessor struct {
	fn func(html string, data any) string
}

func (f *funcProcessor) Process(html string, data any) string {
	return f.fn(html, data)
}

// Func wraps fn as a Processor. Every call returns a distinct processor, so
// keep the returned value to remove it later.
func Func(fn func(html string, data any) string) Processor {
	return &funcProcessor{fn: fn}
}

// Chain is an ordered, mutable sequence of processors applied left to right.
type Chain struct {
	processors []Processor
}

// NewChain creates a chain seeded with the given processors in order.
func NewChain(initial ...Processor) *Chain {
	c := &Chain{
		processors: make([]Processor, 0, len(initial)),
	}
	for _, p := range initial {
		if p == nil {
			continue
		}
		c.processors = append(c.processors, p)
	}
	return c
}

// Add appends a processor to the end of the chain.
func (c *Chain) Add(p Processor) {
	c.Insert(p, len(c.processors))
}

// Insert places a processor at index. Indices below zero insert at the front
// and indices past the end append.
func (c *Chain) Insert(p Processor, index int) {
	if p == nil {
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(c.processors) {
		index = len(c.processors)
	}

	c.processors = append(c.processors, nil)
	copy(c.processors[index+1:], c.processors[index:])
	c.processors[index] = p
}

// Remove deletes the first processor identical to p and reports whether one
// was found.
func (c *Chain) Remove(p Processor) bool {
	if p == nil {
		return false
	}
	for i, existing := range c.processors {
		if sameProcessor(existing, p) {
			c.processors = slices.Delete(c.processors, i, i+1)
			return true
		}
	}
	return false
}

// Process folds html through every processor, passing data unchanged.
func (c *Chain) Process(html string, data any) string {
	for _, p := range c.processors {
		html = p.Process(html, data)
	}
	return html
}

// Len returns the number of processors in the chain.
func (c *Chain) Len() int {
	return len(c.processors)
}

// Processors returns a copy of the chain in application order.
func (c *Chain) Processors() []Processor {
	out := make([]Processor, len(c.processors))
	copy(out, c.processors)
	return out
}

// sameProcessor compares by identity. Values of non-comparable dynamic types
// (func or slice based processors) never match instead of panicking.
func sameProcessor(a, b Processor) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() || !reflect.ValueOf(b).Comparable() {
		return false
	}
	return a == b
}
