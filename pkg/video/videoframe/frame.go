package videoframe

type Dimensions struct {
	W, H int
}

// Frame is one raw sample read from a video connection, in the
// device's native layout. Whoever holds it last must Close it.
type Frame interface {
	DataRef() interface{}
	Dimensions() Dimensions
	Close()
}
