package mux

// scratch 容量为 1 的缓冲区池，池中只有一个缓冲区
//
// acquire 取走唯一的缓冲区，release 归还之前再次 acquire 会阻塞。
type scratch struct {
	slot chan []byte
}

func newScratch(size int) *scratch {
	s := &scratch{slot: make(chan []byte, 1)}
	s.slot <- make([]byte, size)
	return s
}

func (s *scratch) acquire() []byte {
	return <-s.slot
}

func (s *scratch) release(b []byte) {
	s.slot <- b[:cap(b)]
}
