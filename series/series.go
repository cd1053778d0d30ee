// Package series implements the fixed-capacity rolling window of
// points that are plotted on the live chart.
package series

// Capacity holds the number of points kept for the live chart.
const Capacity = 50

// Point holds one plotted point.
type Point struct {
	// Label holds the label shown on the time axis.
	Label string
	// Power holds the active power in W.
	Power float64
	// Consumption holds the consumption over the last interval in
	// Wh. If it's nil, the point still occupies a slot but nothing
	// is plotted for the consumption series.
	Consumption *float64
}

// Diff describes the change made to a Buffer by a single Push.
// Applying the same Diff to a copy of the buffer's previous
// contents produces its new contents.
type Diff struct {
	// Evicted holds whether the oldest point was removed.
	Evicted bool
	// Appended holds the point added at the end.
	Appended Point
}

// Buffer holds up to a fixed number of points in arrival order.
// When full, pushing a point evicts the oldest one. A Buffer is
// not safe for concurrent use.
type Buffer struct {
	// points holds the points in a ring, starting at start.
	points []Point
	start  int
	n      int
}

// NewBuffer returns a new buffer that holds at most size points.
// If size is not positive, Capacity is used.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = Capacity
	}
	return &Buffer{
		points: make([]Point, size),
	}
}

// Push adds p to the end of the buffer, evicting the
// oldest point first if the buffer is full.
func (b *Buffer) Push(p Point) Diff {
	var d Diff
	if b.n == len(b.points) {
		b.points[b.start] = Point{}
		b.start = (b.start + 1) % len(b.points)
		b.n--
		d.Evicted = true
	}
	b.points[(b.start+b.n)%len(b.points)] = p
	b.n++
	d.Appended = p
	return d
}

// Len returns the number of points in the buffer.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the maximum number of points the buffer can hold.
func (b *Buffer) Cap() int {
	return len(b.points)
}

// Snapshot returns the points in the buffer, oldest first.
// The returned slice is a copy and may be changed freely.
func (b *Buffer) Snapshot() []Point {
	ps := make([]Point, b.n)
	for i := range ps {
		ps[i] = b.points[(b.start+i)%len(b.points)]
	}
	return ps
}
