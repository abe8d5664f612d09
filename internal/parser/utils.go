package parser

import "strconv"

// parseUintLiteral decodes an INT token's raw text (decimal, 0x hex, or 0b
// binary, per the lexer's readNumber) into its numeric value.
func parseUintLiteral(text string) uint64 {
	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		v, _ := strconv.ParseUint(text[2:], 16, 64)
		return v
	}
	if len(text) > 2 && text[0] == '0' && (text[1] == 'b' || text[1] == 'B') {
		v, _ := strconv.ParseUint(text[2:], 2, 64)
		return v
	}
	v, _ := strconv.ParseUint(text, 10, 64)
	return v
}
