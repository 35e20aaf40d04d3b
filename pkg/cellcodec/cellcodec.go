// Package cellcodec serializes preset payloads directly into cells of the
// particle grid, so presets travel embedded inside exported world snapshots
// and can be rediscovered later starting from any cell of the embedding.
//
// # Cell format
//
// Every cell of an embedding carries the reserved marker material, the magic
// word in its Ctype register, navigation flags, and four 16-bit payload
// words. Navigation flags point toward the origin cell: RIGHT is set on
// every cell not in the box's leftmost column, UP on every cell not in its
// bottom row, so a walk that steps left on RIGHT and down on UP always lands
// on the origin.
//
// The origin cell is the header: its payload words hold the payload
// checksum, the chunk count, and the box dimensions. The following
// chunkCount cells, row-major from the origin, each hold 8 payload bytes
// packed two per word (lo + hi*256). One footer cell closes the frame.
//
// # Integrity
//
// The checksum is a 16-bit multiply/xor fold. It detects accidental
// corruption, which is all it is for; it offers no tamper resistance, and
// its semantics must not change without a major cell-format bump.
package cellcodec

// Magic is the word every embedded-data cell carries in its Ctype register.
// A cell without it is simply not embedded data.
const Magic uint16 = 0x5EED

// Navigation flag bits. HEADER and FOOTER mark the frame ends; RIGHT and UP
// describe the direction toward the header (combinable).
const (
	FlagHeader uint16 = 1
	FlagRight  uint16 = 2
	FlagUp     uint16 = 4
	FlagFooter uint16 = 8
)

// chunkSize is the number of payload bytes per body cell: four words, two
// bytes each.
const chunkSize = 8

// frameOverhead is the header and footer cell count.
const frameOverhead = 2

// maxHeaderWalk bounds the header-discovery walk. Any valid box reaches its
// header within width+height steps; the ceiling only matters for corrupted
// or cyclic navigation data.
const maxHeaderWalk = 4096

// checksumSeed starts the checksum fold.
const checksumSeed = 0x1505

// Checksum folds data into 16 bits with the multiply/xor scheme the cell
// format has always used. Adequate for accidental-corruption detection only.
func Checksum(data []byte) uint16 {
	h := uint16(checksumSeed)
	for _, b := range data {
		h = h*31 ^ uint16(b)
	}
	return h
}

// chunkCount returns how many body cells a payload of n bytes needs.
func chunkCount(n int) int {
	return (n + chunkSize - 1) / chunkSize
}

// packChunk packs up to 8 bytes into four words, low byte first. Missing
// trailing bytes read as zero.
func packChunk(chunk []byte) [4]uint16 {
	var buf [chunkSize]byte
	copy(buf[:], chunk)

	var words [4]uint16
	for i := range words {
		words[i] = uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
	}
	return words
}

// unpackChunk reverses packChunk.
func unpackChunk(words [4]uint16) [chunkSize]byte {
	var buf [chunkSize]byte
	for i, w := range words {
		buf[2*i] = byte(w)
		buf[2*i+1] = byte(w >> 8)
	}
	return buf
}
