package eventcore

// Checker is an incremental consistency checker: it maintains a summary
// over the current execution and can reject new events as they are added,
// without recomputing from scratch each time.
type Checker interface {
	Name() string
	// Reset recomputes the checker's summary from scratch against x.
	Reset(x *Execution)
	// CheckEvent incrementally checks e, which must already be the most
	// recently added event of the execution the checker was last Reset
	// or CheckEvent'd against.
	CheckEvent(e Event) *Inconsistency
	// Check re-validates the whole current execution from the checker's
	// summary, without requiring a specific new event.
	Check() *Inconsistency
}

// CompositeChecker aggregates several Checkers by short-circuit, in a
// fixed order: the first to report an inconsistency wins. Once
// detectedInconsistency is set it is idempotent for the remainder of the
// exploration — further events are still accepted but checks are skipped.
type CompositeChecker struct {
	checkers []Checker
	detected *Inconsistency
}

// NewCompositeChecker builds a composite over checkers, consulted in the
// given order.
func NewCompositeChecker(checkers ...Checker) *CompositeChecker {
	return &CompositeChecker{checkers: checkers}
}

// Detected returns the first recorded inconsistency, or nil if none.
func (c *CompositeChecker) Detected() *Inconsistency { return c.detected }

// Reset resets every sub-checker and clears any recorded inconsistency.
func (c *CompositeChecker) Reset(x *Execution) {
	c.detected = nil
	for _, chk := range c.checkers {
		chk.Reset(x)
	}
}

// CheckEvent runs every sub-checker on e in order, stopping at the first
// inconsistency. It is a no-op once an inconsistency has already been
// recorded.
func (c *CompositeChecker) CheckEvent(e Event) *Inconsistency {
	if c.detected != nil {
		return c.detected
	}
	for _, chk := range c.checkers {
		if inc := chk.CheckEvent(e); inc != nil {
			c.detected = inc
			return inc
		}
	}
	return nil
}

// Check re-validates the whole execution through every sub-checker.
func (c *CompositeChecker) Check() *Inconsistency {
	if c.detected != nil {
		return c.detected
	}
	for _, chk := range c.checkers {
		if inc := chk.Check(); inc != nil {
			c.detected = inc
			return inc
		}
	}
	return nil
}
