// Package escape implements the raw-byte-to-text escaping rules used
// when emitting AX.25 and POCSAG alphanumeric payloads.
package escape

import "strings"

var controlNames = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "LF", "VT", "FF", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// Byte escapes a single raw byte for text display: the high bit is
// masked before escaping, control codes 0..31 become <NUL>..<US>, DEL
// (127) becomes <DEL>, and everything else passes through as its
// printable rune.
func Byte(b byte) string {
	b &= 0x7F
	if b < 32 {
		return "<" + controlNames[b] + ">"
	}
	if b == 127 {
		return "<DEL>"
	}
	return string(rune(b))
}

// String escapes every byte of data in sequence.
func String(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		sb.WriteString(Byte(b))
	}
	return sb.String()
}
