package reactive

// Integer is the set of types a sum can be accumulated over. Arithmetic
// wraps on overflow.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// SumTotal is a reactive total of any number of SumElements.
//
// Each element pushes only the delta from its previous value, so a change
// to one element costs O(1) no matter how many elements contribute. When an
// element is released it pushes the negation of its last value.
//
//	total := reactive.NewSumTotal[int]()
//	a := reactive.NewSumElement(total)
//	b := reactive.NewSumElement(total)
//	a.Receive(1)
//	b.Receive(10)
//	total.Current() // 11
//	a.Release()
//	total.Current() // 10
type SumTotal[T Integer] struct {
	deltas *WriteSignal[T]
	total  *ReadSignal[T]
}

// NewSumTotal creates a total of zero.
func NewSumTotal[T Integer]() *SumTotal[T] {
	deltas := NewSignal[T](0)
	var sum T
	total := Map(deltas, func(delta T) T {
		sum += delta
		return sum
	})
	t := &SumTotal[T]{
		deltas: deltas.Write(),
		total:  total,
	}
	// The total keeps the deltas cell alive.
	deltas.Release()
	return t
}

// Read returns a new read handle on the total.
func (t *SumTotal[T]) Read() *ReadSignal[T] {
	return t.total.Clone()
}

// Current returns the current total.
func (t *SumTotal[T]) Current() T {
	return t.total.Current()
}

// Release drops the total's own reader. Elements keep writing silently.
func (t *SumTotal[T]) Release() {
	t.total.Release()
}

func (t *SumTotal[T]) cellRef() *cell[T] {
	return t.total.cellRef()
}

// SumElement is one contributor to a SumTotal.
type SumElement[T Integer] struct {
	current  T
	total    *SumTotal[T]
	released bool
}

// NewSumElement creates an element contributing zero to total.
func NewSumElement[T Integer](total *SumTotal[T]) *SumElement[T] {
	return &SumElement[T]{total: total}
}

// Receive sets this element's contribution to value.
func (e *SumElement[T]) Receive(value T) {
	if e.released {
		return
	}
	delta := value - e.current
	e.current = value
	e.total.deltas.Set(delta)
}

// Value returns this element's current contribution.
func (e *SumElement[T]) Value() T {
	return e.current
}

// Release removes this element's contribution from the total.
func (e *SumElement[T]) Release() {
	if e.released {
		return
	}
	e.released = true
	e.total.deltas.Set(-e.current)
}

// Track feeds every value of src into the element. Releasing the returned
// handle stops tracking without removing the contribution.
func (e *SumElement[T]) Track(src Readable[T]) *ReadSignal[struct{}] {
	return Observe(src, e.Receive)
}
