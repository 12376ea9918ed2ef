package rdf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// Unicode surrogate pair constants
const (
	unicodeSurrogateHighStart = 0xD800
	unicodeSurrogateHighEnd   = 0xDBFF
	unicodeSurrogateLowStart  = 0xDC00
	unicodeSurrogateLowEnd    = 0xDFFF
	unicodeSurrogateBase      = 0x10000
)

const (
	unicodeEscapeLength     = 6  // \uXXXX
	unicodeLongEscapeLength = 10 // \UXXXXXXXX
)

var errInvalidEscape = errors.New("invalid escape sequence")

func isValidUnicodeCodePoint(codePoint rune) bool {
	if codePoint > 0x10FFFF {
		return false
	}
	return codePoint < unicodeSurrogateHighStart || codePoint > unicodeSurrogateLowEnd
}

func parseHexDigit(hex byte) (int, bool) {
	switch {
	case hex >= '0' && hex <= '9':
		return int(hex - '0'), true
	case hex >= 'a' && hex <= 'f':
		return int(hex-'a') + 10, true
	case hex >= 'A' && hex <= 'F':
		return int(hex-'A') + 10, true
	default:
		return 0, false
	}
}

func decodeUChar(hexStr string) rune {
	if len(hexStr) != 4 && len(hexStr) != 8 {
		return -1
	}
	var codePoint rune
	for i := 0; i < len(hexStr); i++ {
		digit, ok := parseHexDigit(hexStr[i])
		if !ok {
			return -1
		}
		codePoint = codePoint*16 + rune(digit)
	}
	return codePoint
}

// splitLangDirection splits "en--rtl" into ("en", "rtl").
func splitLangDirection(tag string) (lang, dir string) {
	if idx := strings.Index(tag, "--"); idx >= 0 {
		return tag[:idx], tag[idx+2:]
	}
	return tag, ""
}

func isValidLangTag(tag string) bool {
	lang, dir := splitLangDirection(tag)
	if dir != "" && dir != "ltr" && dir != "rtl" {
		return false
	}
	parts := strings.Split(lang, "-")
	if len(parts[0]) < 1 || len(parts[0]) > 8 {
		return false
	}
	for i, part := range parts {
		if part == "" {
			return false
		}
		for j := 0; j < len(part); j++ {
			ch := part[j]
			alpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
			if i == 0 && !alpha {
				return false
			}
			if !alpha && !(ch >= '0' && ch <= '9') {
				return false
			}
		}
	}
	return true
}

func readLineWithLimit(reader *bufio.Reader, maxBytes int) (string, error) {
	if maxBytes <= 0 {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && len(line) > 0 {
				return line, nil
			}
			return "", err
		}
		return line, nil
	}

	var buffer []byte
	for {
		part, err := reader.ReadSlice('\n')
		buffer = append(buffer, part...)
		if len(buffer) > maxBytes {
			discardLine(reader)
			return "", ErrLineTooLong
		}
		if err == nil {
			return string(buffer), nil
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(buffer) > 0 {
			return string(buffer), nil
		}
		return "", err
	}
}

func discardLine(reader *bufio.Reader) {
	for {
		_, err := reader.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return
		}
	}
}

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// unescapeString decodes N-Quads string escapes: ECHAR plus \uXXXX and \UXXXXXXXX.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var builder strings.Builder
	pos := 0
	for pos < len(s) {
		ch := s[pos]
		if ch != '\\' {
			builder.WriteByte(ch)
			pos++
			continue
		}
		if pos+1 >= len(s) {
			return "", errInvalidEscape
		}
		var advance int
		var err error
		switch next := s[pos+1]; next {
		case 'u':
			advance, err = unescapeUnicodeEscape(&builder, s, pos)
		case 'U':
			advance, err = unescapeUnicodeLongEscape(&builder, s, pos)
		default:
			advance, err = unescapeSimpleEscape(&builder, next)
		}
		if err != nil {
			return "", err
		}
		pos += advance
	}
	return builder.String(), nil
}

func unescapeSimpleEscape(builder *strings.Builder, escapeChar byte) (int, error) {
	switch escapeChar {
	case 'n':
		builder.WriteByte('\n')
	case 't':
		builder.WriteByte('\t')
	case 'r':
		builder.WriteByte('\r')
	case 'b':
		builder.WriteByte('\b')
	case 'f':
		builder.WriteByte('\f')
	case '"', '\'', '\\':
		builder.WriteByte(escapeChar)
	default:
		return 0, errInvalidEscape
	}
	return 2, nil
}

// unescapeUnicodeEscape handles \uXXXX, including surrogate pairs.
func unescapeUnicodeEscape(builder *strings.Builder, s string, pos int) (int, error) {
	if pos+unicodeEscapeLength > len(s) {
		return 0, errInvalidEscape
	}
	codePoint := decodeUChar(s[pos+2 : pos+6])
	if codePoint < 0 {
		return 0, errInvalidEscape
	}
	if codePoint >= unicodeSurrogateHighStart && codePoint <= unicodeSurrogateHighEnd {
		if pos+12 > len(s) || s[pos+6] != '\\' || s[pos+7] != 'u' {
			return 0, errInvalidEscape
		}
		low := decodeUChar(s[pos+8 : pos+12])
		if low < unicodeSurrogateLowStart || low > unicodeSurrogateLowEnd {
			return 0, errInvalidEscape
		}
		builder.WriteRune(unicodeSurrogateBase + ((codePoint - unicodeSurrogateHighStart) << 10) + (low - unicodeSurrogateLowStart))
		return 12, nil
	}
	if !isValidUnicodeCodePoint(codePoint) {
		return 0, errInvalidEscape
	}
	builder.WriteRune(codePoint)
	return unicodeEscapeLength, nil
}

func unescapeUnicodeLongEscape(builder *strings.Builder, s string, pos int) (int, error) {
	if pos+unicodeLongEscapeLength > len(s) {
		return 0, errInvalidEscape
	}
	codePoint := decodeUChar(s[pos+2 : pos+10])
	if codePoint < 0 || !isValidUnicodeCodePoint(codePoint) {
		return 0, errInvalidEscape
	}
	builder.WriteRune(codePoint)
	return unicodeLongEscapeLength, nil
}
