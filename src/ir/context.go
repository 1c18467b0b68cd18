// Package ir lowers a parsed *ast.CompUnit into textual Koopa-style SSA IR.
//
// The emitter is a single pre-order walk of the AST, threaded with a symbol
// environment and a Context bundling the compiler's unique-id counters. Unlike the
// teacher's process-wide globals (see vslc/src/util/label.go), this compiler is
// single-threaded and synchronous end to end (spec.md §5), so the counters are
// bundled into one struct passed explicitly down the call stack instead of being
// package-level state shared across goroutines.
package ir

import "fmt"

// Context bundles the four unique-id counters the emitter needs: SSA temporaries,
// scope offsets, if/short-circuit labels and while labels. All four start at -1 and
// increment on each allocation, in source-code walk order, matching spec.md §5 and
// §9's counter-ordering guarantee.
type Context struct {
	temp  int
	scope int
	ifLbl int
	whLbl int
}

// NewContext returns a Context with all counters at their initial value.
func NewContext() *Context {
	return &Context{temp: -1, scope: -1, ifLbl: -1, whLbl: -1}
}

// NextTemp allocates and returns the next SSA temporary name, "%N".
func (c *Context) NextTemp() string {
	c.temp++
	return fmt.Sprintf("%%%d", c.temp)
}

// NextScope allocates and returns the next scope offset.
func (c *Context) NextScope() int {
	c.scope++
	return c.scope
}

// NextIfLabels allocates a group of related if/else/short-circuit labels sharing
// one counter value, so "then"/"else"/"end" labels for the same statement line up.
func (c *Context) NextIfLabels() int {
	c.ifLbl++
	return c.ifLbl
}

// NextWhileLabels allocates a group of while-loop labels (entry/body/end) sharing
// one counter value.
func (c *Context) NextWhileLabels() int {
	c.whLbl++
	return c.whLbl
}
