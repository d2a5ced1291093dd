package core

// Character code constants
const (
	CharEOF       rune = 0
	CharTAB       rune = 9
	CharLF        rune = 10
	CharVTAB      rune = 11
	CharFF        rune = 12
	CharCR        rune = 13
	CharSPACE     rune = 32
	CharBANG      rune = 33
	CharDQ        rune = 34
	CharHASH      rune = 35
	CharAMPERSAND rune = 38
	CharSQ        rune = 39
	CharLPAREN    rune = 40
	CharRPAREN    rune = 41
	CharSTAR      rune = 42
	CharMINUS     rune = 45
	CharPERIOD    rune = 46
	CharSLASH     rune = 47
	CharCOLON     rune = 58
	CharSEMICOLON rune = 59
	CharLT        rune = 60
	CharEQ        rune = 61
	CharGT        rune = 62

	Char0 rune = 48
	Char9 rune = 57

	CharA rune = 65
	CharF rune = 70
	CharZ rune = 90

	CharLBRACKET  rune = 91
	CharBACKSLASH rune = 92
	CharRBRACKET  rune = 93
	CharCARET     rune = 94

	CharLowerA rune = 97
	CharLowerF rune = 102
	CharLowerZ rune = 122

	CharLBRACE rune = 123
	CharPIPE   rune = 124
	CharRBRACE rune = 125
	CharTILDA  rune = 126
	CharAT     rune = 64
)

// IsWhitespace reports whether code is an HTML whitespace character
// (tab, line feed, form feed, carriage return or space).
func IsWhitespace(code rune) bool {
	return code == CharTAB || code == CharLF || code == CharFF || code == CharCR || code == CharSPACE
}

// IsDigit checks if a character code represents a digit
func IsDigit(code rune) bool {
	return Char0 <= code && code <= Char9
}

// IsAsciiLetter checks if a character code represents an ASCII letter
func IsAsciiLetter(code rune) bool {
	return (code >= CharLowerA && code <= CharLowerZ) || (code >= CharA && code <= CharZ)
}

// IsAsciiHexDigit checks if a character code represents a hexadecimal digit
func IsAsciiHexDigit(code rune) bool {
	return (code >= CharLowerA && code <= CharLowerF) || (code >= CharA && code <= CharF) || IsDigit(code)
}

// IsNewLine checks if a character code represents a newline
func IsNewLine(code rune) bool {
	return code == CharLF || code == CharCR
}

// IsQuote checks if a character code represents a quote character
func IsQuote(code rune) bool {
	return code == CharSQ || code == CharDQ
}
