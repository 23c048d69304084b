package cabac

// Encoder is the HEVC binary arithmetic encoder.
//
// The low register holds up to 32 bits; completed bytes leave it through
// writeOut, where 0xff bytes are held back until a later byte settles
// whether a carry propagates into them.
type Encoder struct {
	ctx          *ContextTable
	low          uint32
	range_       uint32
	bitsLeft     int
	bufferedByte uint32
	numBuffered  int

	buf  []byte
	acc  uint32 // partially filled output byte, used only by Finish
	nacc int
}

// NewEncoder creates an Encoder adapting ctx, with an initial buffer sized
// for expectedSize bytes. Pass 0 for a minimal default allocation.
func NewEncoder(ctx *ContextTable, expectedSize int) *Encoder {
	e := &Encoder{}
	e.Reset(ctx, expectedSize)
	return e
}

// Reset restarts the arithmetic coder, keeping the existing buffer if it
// has sufficient capacity.
func (e *Encoder) Reset(ctx *ContextTable, expectedSize int) {
	if expectedSize < 1024 {
		expectedSize = 1024
	}
	if cap(e.buf) >= expectedSize {
		e.buf = e.buf[:0]
	} else {
		e.buf = make([]byte, 0, expectedSize)
	}
	e.ctx = ctx
	e.low = 0
	e.range_ = 510
	e.bitsLeft = 23
	e.bufferedByte = 0xff
	e.numBuffered = 0
	e.acc = 0
	e.nacc = 0
}

func (e *Encoder) EncodeBin(bin int, ctx int) {
	state, lps := e.ctx.update(ctx, bin)
	lpsRange := uint32(rangeTabLPS[state][(e.range_>>6)&3])
	e.range_ -= lpsRange

	if lps {
		numBits := int(renormTable[lpsRange>>3])
		e.low = (e.low + e.range_) << uint(numBits)
		e.range_ = lpsRange << uint(numBits)
		e.bitsLeft -= numBits
	} else {
		if e.range_ >= 256 {
			return
		}
		e.low <<= 1
		e.range_ <<= 1
		e.bitsLeft--
	}
	e.testAndWriteOut()
}

func (e *Encoder) EncodeBypass(bin int) {
	e.low <<= 1
	if bin != 0 {
		e.low += e.range_
	}
	e.bitsLeft--
	e.testAndWriteOut()
}

func (e *Encoder) EncodeBypassBins(value uint32, n int) {
	for n > 8 {
		n -= 8
		pattern := value >> uint(n)
		e.low <<= 8
		e.low += e.range_ * pattern
		value -= pattern << uint(n)
		e.bitsLeft -= 8
		e.testAndWriteOut()
	}
	e.low <<= uint(n)
	e.low += e.range_ * value
	e.bitsLeft -= n
	e.testAndWriteOut()
}

func (e *Encoder) EncodeTerminate(bin int) {
	e.range_ -= 2
	if bin != 0 {
		e.low += e.range_
		e.low <<= 7
		e.range_ = 2 << 7
		e.bitsLeft -= 7
	} else {
		if e.range_ >= 256 {
			return
		}
		e.low <<= 1
		e.range_ <<= 1
		e.bitsLeft--
	}
	e.testAndWriteOut()
}

func (e *Encoder) Contexts() *ContextTable { return e.ctx }

func (e *Encoder) testAndWriteOut() {
	if e.bitsLeft < 12 {
		e.writeOut()
	}
}

func (e *Encoder) writeOut() {
	leadByte := e.low >> uint(24-e.bitsLeft)
	e.bitsLeft += 8
	e.low &= 0xffffffff >> uint(e.bitsLeft)

	if leadByte == 0xff {
		e.numBuffered++
		return
	}
	if e.numBuffered > 0 {
		carry := leadByte >> 8
		b := e.bufferedByte + carry
		e.bufferedByte = leadByte & 0xff
		e.buf = append(e.buf, byte(b))
		b = (0xff + carry) & 0xff
		for e.numBuffered > 1 {
			e.buf = append(e.buf, byte(b))
			e.numBuffered--
		}
	} else {
		e.numBuffered = 1
		e.bufferedByte = leadByte
	}
}

// putBits appends the n low bits of v, MSB first.
func (e *Encoder) putBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		e.acc = e.acc<<1 | (v>>uint(i))&1
		e.nacc++
		if e.nacc == 8 {
			e.buf = append(e.buf, byte(e.acc))
			e.acc = 0
			e.nacc = 0
		}
	}
}

// Finish flushes the coder, appends the stop bit and zero alignment, and
// returns the payload. The caller codes the final terminating bin.
func (e *Encoder) Finish() []byte {
	if e.low>>uint(32-e.bitsLeft) != 0 {
		e.buf = append(e.buf, byte(e.bufferedByte+1))
		for e.numBuffered > 1 {
			e.buf = append(e.buf, 0x00)
			e.numBuffered--
		}
		e.low -= 1 << uint(32-e.bitsLeft)
	} else {
		if e.numBuffered > 0 {
			e.buf = append(e.buf, byte(e.bufferedByte))
		}
		for e.numBuffered > 1 {
			e.buf = append(e.buf, 0xff)
			e.numBuffered--
		}
	}
	e.putBits(e.low>>8, 24-e.bitsLeft)

	e.putBits(1, 1)
	if e.nacc > 0 {
		e.putBits(0, 8-e.nacc)
	}
	return e.buf
}

// Bytes returns the bytes settled so far, without finalising.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Pos returns the approximate number of bits produced so far.
func (e *Encoder) Pos() int {
	return (len(e.buf)+e.numBuffered)*8 + 23 - e.bitsLeft
}
