package formula

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokLParen
	tokRParen
	tokDot
	tokComma
	tokEq
	tokLt
	tokGt
	tokArrow // ->
	tokIff   // <->
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end of input",
	tokIdent:  "identifier",
	tokNumber: "number",
	tokString: "string",
	tokLParen: `"("`,
	tokRParen: `")"`,
	tokDot:    `"."`,
	tokComma:  `","`,
	tokEq:     `"="`,
	tokLt:     `"<"`,
	tokGt:     `">"`,
	tokArrow:  `"->"`,
	tokIff:    `"<->"`,
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	pos  int
}

// keywords cannot be used as variable names.
var keywords = map[string]bool{
	"not": true, "and": true, "or": true,
	"exists": true, "forall": true, "connects": true,
	"type": true, "connecting": true,
	"body": true, "forceElement": true, "constraint": true, "connection": true, "joint": true,
}

// lex splits src into tokens. The final token is always tokEOF.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == '.':
			toks = append(toks, token{tokDot, ".", i})
			i++
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case r == '=':
			toks = append(toks, token{tokEq, "=", i})
			i++
		case r == '>':
			toks = append(toks, token{tokGt, ">", i})
			i++
		case r == '<':
			if hasPrefix(src, i+1, "->") {
				toks = append(toks, token{tokIff, "<->", i})
				i += 3
				continue
			}
			toks = append(toks, token{tokLt, "<", i})
			i++
		case r == '-':
			if hasPrefix(src, i+1, ">") {
				toks = append(toks, token{tokArrow, "->", i})
				i += 2
				continue
			}
			if i+1 < len(src) && isDigit(src[i+1]) {
				end := scanNumber(src, i+1)
				toks = append(toks, token{tokNumber, src[i:end], i})
				i = end
				continue
			}
			return nil, newSyntaxError(src, i, "-", "expected \"->\" or a number")
		case r == '"':
			end, ok := scanString(src, i)
			if !ok {
				return nil, newSyntaxError(src, i, src[i:end], "unterminated string literal")
			}
			toks = append(toks, token{tokString, src[i:end], i})
			i = end
		case r < utf8.RuneSelf && isDigit(byte(r)):
			end := scanNumber(src, i)
			toks = append(toks, token{tokNumber, src[i:end], i})
			i = end
		case r == '_' || unicode.IsLetter(r):
			end := i + size
			for end < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[end:])
				if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				end += s2
			}
			toks = append(toks, token{tokIdent, src[i:end], i})
			i = end
		default:
			return nil, newSyntaxError(src, i, string(r), "unexpected character")
		}
	}
	toks = append(toks, token{tokEOF, "", len(src)})
	return toks, nil
}

// scanNumber returns the end of the number whose digits start at i.
// A fraction is consumed only when a digit follows the dot.
func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i+1 < len(src) && src[i] == '.' && isDigit(src[i+1]) {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	return i
}

// scanString returns the end of the double-quoted string starting at i and
// whether it was terminated.
func scanString(src string, i int) (int, bool) {
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
		case '"':
			return j + 1, true
		case '\n':
			return j, false
		default:
			j++
		}
	}
	return len(src), false
}

func hasPrefix(src string, i int, prefix string) bool {
	return i+len(prefix) <= len(src) && src[i:i+len(prefix)] == prefix
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
