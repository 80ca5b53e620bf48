package reactive

// Receiver receives values from a signal. It is the interface form of the
// function passed to Map.
type Receiver[T, U any] interface {
	Receive(value T) U
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc[T, U any] func(T) U

// Receive calls f(value).
func (f ReceiverFunc[T, U]) Receive(value T) U {
	return f(value)
}

// Map derives a signal holding f applied to src. f runs once now and again
// after every write to src. The source value stays borrowed while f runs,
// so f must not write to src.
func Map[T, U any](src Readable[T], f func(T) U) *ReadSignal[U] {
	c := src.cellRef()
	return derive(func() U {
		var out U
		c.read(func(v *T) { out = f(*v) })
		return out
	}, c)
}

// MapTo is Map with a Receiver.
func MapTo[T, U any](src Readable[T], r Receiver[T, U]) *ReadSignal[U] {
	return Map(src, r.Receive)
}

// Observe runs fn with the current value now and after every write to src.
// The returned handle keeps the observation alive.
func Observe[T any](src Readable[T], fn func(T)) *ReadSignal[struct{}] {
	return Map(src, func(v T) struct{} {
		fn(v)
		return struct{}{}
	})
}

// OnlyChanges derives a signal that only propagates writes that change the
// value.
func OnlyChanges[T comparable](src Readable[T]) *ReadSignal[T] {
	return OnlyChangesFunc(src, func(a, b T) bool { return a == b })
}

// OnlyChangesFunc is OnlyChanges with a custom equality function.
func OnlyChangesFunc[T any](src Readable[T], equal func(a, b T) bool) *ReadSignal[T] {
	c := src.cellRef()
	child := newCell(c.current())
	link(child, c, func() {
		next := c.current()
		if !equal(child.current(), next) {
			child.set(next)
		}
	})
	return &ReadSignal[T]{c: child}
}

// Zip2 derives a signal from two sources. A write to either source
// recomputes f from the latest value of both.
func Zip2[A, B, R any](a Readable[A], b Readable[B], f func(A, B) R) *ReadSignal[R] {
	ca, cb := a.cellRef(), b.cellRef()
	return derive(func() R {
		var out R
		ca.read(func(av *A) {
			cb.read(func(bv *B) { out = f(*av, *bv) })
		})
		return out
	}, ca, cb)
}

// Zip3 derives a signal from three sources.
func Zip3[A, B, C, R any](a Readable[A], b Readable[B], c Readable[C], f func(A, B, C) R) *ReadSignal[R] {
	ca, cb, cc := a.cellRef(), b.cellRef(), c.cellRef()
	return derive(func() R {
		var out R
		ca.read(func(av *A) {
			cb.read(func(bv *B) {
				cc.read(func(cv *C) { out = f(*av, *bv, *cv) })
			})
		})
		return out
	}, ca, cb, cc)
}

// ZipAll derives a signal from any number of sources of the same type. f
// receives the latest value of every source, in order.
func ZipAll[T, R any](srcs []Readable[T], f func([]T) R) *ReadSignal[R] {
	cells := make([]*cell[T], len(srcs))
	sources := make([]source, len(srcs))
	for i, s := range srcs {
		cells[i] = s.cellRef()
		sources[i] = cells[i]
	}
	return derive(func() R {
		var out R
		readAll(cells, func(values []T) { out = f(values) })
		return out
	}, sources...)
}

// readAll runs fn with every cell borrowed.
func readAll[T any](cells []*cell[T], fn func([]T)) {
	values := make([]T, len(cells))
	for i, c := range cells {
		c.borrowShared("zip")
		defer c.releaseShared()
		values[i] = c.value
	}
	fn(values)
}
