package critcell

import (
	"bytes"
	"encoding/binary"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key is a byte-string key representation for use with BitsBitOps and
// CStrBitOps. It plays the same role as the teacher's own Key type: a
// thin, order-preserving encoding helper that sits beside the structural
// algorithm rather than inside it — the tree itself never stores or
// inspects a Key directly, only through a BitOps[T] (spec.md §3, "Keys
// are virtual — they exist only through the bitops function").
//
// Integer encoding policy
// -----------------------
// Every integer constructor produces an 8-byte big-endian representation
// and adds an offset of 1<<63 before encoding, so that lexicographic
// byte-wise comparison of Keys matches numeric order for signed source
// values and for unsigned source values below 1<<63 (see FromUint64), and
// so that values from different source widths
// remain comparable (FromInt32(x) and FromInt64(x) encode to the same Key
// for the same numeric x). This is the same bias trick spec.md §6 requires
// of the built-in S32/S64 bitops (flip the sign bit before bit queries),
// applied once at construction time instead of on every GetBit call.
type Key []byte

// FromBytes returns a copy of b as a Key. A nil b yields an empty
// (non-nil) Key.
func FromBytes(b []byte) Key {
	if b == nil {
		return []byte{}
	}
	kb := make([]byte, len(b))
	copy(kb, b)
	return Key(kb)
}

// FromString returns a Key built from s after normalizing it to Unicode
// NFC, so that Keys built from equivalent Unicode representations of the
// same text compare equal and order consistently.
func FromString(s string) Key {
	s = norm.NFC.String(s)
	return FromBytes([]byte(s))
}

const int64Offset = uint64(1) << 63

// FromInt64 converts an int64 to an order-preserving 8-byte big-endian Key.
func FromInt64(i int64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i)+int64Offset)
	return FromBytes(b[:])
}

// FromInt32 converts an int32 to an order-preserving 8-byte big-endian Key.
func FromInt32(i int32) Key { return FromInt64(int64(i)) }

// FromInt16 converts an int16 to an order-preserving 8-byte big-endian Key.
func FromInt16(i int16) Key { return FromInt64(int64(i)) }

// FromInt8 converts an int8 to an order-preserving 8-byte big-endian Key.
func FromInt8(i int8) Key { return FromInt64(int64(i)) }

// FromUint64 converts a uint64 to an 8-byte big-endian Key that preserves
// order for u < 1<<63. For u >= 1<<63 the offset addition wraps around, so
// those Keys sort before FromUint64(0).
func FromUint64(u uint64) Key {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u+int64Offset)
	return FromBytes(b[:])
}

// FromUint32 converts a uint32 to an order-preserving 8-byte big-endian Key.
func FromUint32(u uint32) Key { return FromUint64(uint64(u)) }

// FromUint16 converts a uint16 to an order-preserving 8-byte big-endian Key.
func FromUint16(u uint16) Key { return FromUint64(uint64(u)) }

// FromUint8 converts a uint8 to an order-preserving 8-byte big-endian Key.
func FromUint8(u uint8) Key { return FromUint64(uint64(u)) }

// Bytes returns a copy of the Key's bytes.
func (k Key) Bytes() []byte {
	if k == nil {
		return nil
	}
	b := make([]byte, len(k))
	copy(b, k)
	return b
}

// Clone returns an independent copy of k.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	kb := make([]byte, len(k))
	copy(kb, k)
	return Key(kb)
}

// String renders the Key as uppercase hex byte tuples, e.g. "[01,AB,00]".
func (k Key) String() string {
	if len(k) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	const hex = "0123456789ABCDEF"
	for i, b := range k {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0x0F])
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equal reports whether k and other hold the same bytes.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Less reports whether k sorts strictly before other in plain byte-wise
// order (bytes.Compare): a shorter key that is a prefix of a longer one
// always sorts first. This agrees with the bitAt/keyFirstDiff order except
// for keys that differ only by trailing zero bytes, which keyFirstDiff
// treats as equal and Less orders shorter first.
func (k Key) Less(other Key) bool {
	return bytes.Compare(k, other) < 0
}

// bitAt returns the bit at position pos of k, or 0 beyond the key's
// length — the "virtual infinite tail of zeros" convention spec.md §3/§4.1
// requires of get_bit, which is what makes a shorter key compare less
// than any extension of it whose next bit is 1.
func (k Key) bitAt(pos int) int {
	byteIdx := pos >> 3
	if byteIdx < 0 || byteIdx >= len(k) {
		return 0
	}
	shift := 7 - uint(pos&7)
	return int((k[byteIdx] >> shift) & 1)
}

// keyFirstDiff returns the smallest bit position < limit at which a and b
// differ, or -1 if they are equal over [0, limit).
func keyFirstDiff(a, b Key, limit int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	maxByte := (limit + 7) / 8
	if maxByte > n {
		maxByte = n
	}
	for i := 0; i < maxByte; i++ {
		var ab, bb byte
		if i < len(a) {
			ab = a[i]
		}
		if i < len(b) {
			bb = b[i]
		}
		if ab == bb {
			continue
		}
		diff := ab ^ bb
		for bit := 0; bit < 8; bit++ {
			pos := i*8 + bit
			if pos >= limit {
				return -1
			}
			if diff&(0x80>>uint(bit)) != 0 {
				return pos
			}
		}
	}
	return -1
}
