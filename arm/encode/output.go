package encode

import (
	"bufio"
	"encoding/binary"
	"io"
)

// WriteAbsolute writes words as a RISC OS Absolute (filetype &FF8) image:
// a flat little-endian word stream loaded and executed directly at its
// load address, with no header - RISC OS recovers the load address from the
// file's catalogue entry, not from the file body itself (spec.md §6,
// "RISC OS absolute output").
func WriteAbsolute(w io.Writer, words []uint32) error {
	bw := bufio.NewWriter(w)
	var buf [4]byte
	for _, word := range words {
		binary.LittleEndian.PutUint32(buf[:], word)
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
