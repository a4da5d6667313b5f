package rtty

// Baudot/ITA2 LETTERS and FIGURES tables, indexed by the 5-bit code
// assembled LSB-first from the framed payload bits. Code 27
// (0x1B) is the FIGURES shift, code 31 (0x1F) is the LETTERS shift;
// code 0 is the null/blank character and is suppressed on output.
var lettersTable = [32]byte{
	0, 'E', '\n', 'A', ' ', 'S', 'I', 'U',
	'\r', 'D', 'R', 'J', 'N', 'F', 'C', 'K',
	'T', 'Z', 'L', 'W', 'H', 'Y', 'P', 'Q',
	'O', 'B', 'G', 0, 'M', 'X', 'V', 0,
}

var figuresTable = [32]byte{
	0, '3', '\n', '-', ' ', '\a', '8', '7',
	'\r', '$', '4', '\'', ',', '!', ':', '(',
	'5', '"', ')', '2', '#', '6', '0', '1',
	'9', '?', '&', 0, '.', '/', ';', 0,
}

const (
	codeFigures = 0x1B
	codeLetters = 0x1F
)
