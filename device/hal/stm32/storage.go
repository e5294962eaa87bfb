package stm32

// Storage16 is packet memory backed by 16-bit cells.
type Storage16 interface {
	Len() int
	Load(i int) uint16
	Store(i int, v uint16)
}

// Storage32 is packet memory backed by 32-bit cells.
type Storage32 interface {
	Len() int
	Load(i int) uint32
	Store(i int, v uint32)
}

// SliceStorage16 is RAM-backed Storage16.
type SliceStorage16 []uint16

func (s SliceStorage16) Len() int              { return len(s) }
func (s SliceStorage16) Load(i int) uint16     { return s[i] }
func (s SliceStorage16) Store(i int, v uint16) { s[i] = v }

// SliceStorage32 is RAM-backed Storage32.
type SliceStorage32 []uint32

func (s SliceStorage32) Len() int              { return len(s) }
func (s SliceStorage32) Load(i int) uint32     { return s[i] }
func (s SliceStorage32) Store(i int, v uint32) { s[i] = v }
