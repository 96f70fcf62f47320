package grading

// ResolutionContext carries the mutable state of one grading pass: which
// dynamic answer keys have already been consumed by a fallback tier, and
// which question ids have already been graded. It is created per run and
// never shared, so concurrent grading of different submissions cannot
// interfere.
type ResolutionContext struct {
	usedKeys  map[string]bool
	processed map[string]bool
}

func NewResolutionContext() *ResolutionContext {
	return &ResolutionContext{
		usedKeys:  make(map[string]bool),
		processed: make(map[string]bool),
	}
}

func (c *ResolutionContext) KeyUsed(key string) bool {
	return c.usedKeys[key]
}

func (c *ResolutionContext) MarkKeyUsed(key string) {
	c.usedKeys[key] = true
}

// MarkProcessed records a question id and reports whether this was its
// first occurrence. Duplicate rows in the question bank grade only once.
func (c *ResolutionContext) MarkProcessed(questionID string) bool {
	if c.processed[questionID] {
		return false
	}
	c.processed[questionID] = true
	return true
}
