package moneris

import (
	"strconv"
	"strings"
	"unicode"
)

// Verification response fields.
const (
	FieldResponse     = "response"
	FieldResponseCode = "response_code"
)

// ParseVerifyResponse parses the "key value" lines of a verification response.
// Lines are separated by <br> or newlines. When any line is not a key followed by
// a value the whole text is returned under "response".
func ParseVerifyResponse(text string) map[string]string {
	raw := map[string]string{FieldResponse: text}

	lines := strings.FieldsFunc(strings.ReplaceAll(text, "<br>", "\n"), func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			return raw
		}
		fields[parts[0]] = parts[len(parts)-1]
	}

	if len(fields) == 0 {
		return raw
	}

	return fields
}

// ResponseCode reads the leading integer of response_code. The gateway
// sometimes sends "null", which is 0.
func ResponseCode(fields map[string]string) int {
	value := strings.TrimSpace(fields[FieldResponseCode])

	end := 0
	for i, r := range value {
		if (r == '-' || r == '+') && i == 0 {
			end = i + 1
			continue
		}
		if !unicode.IsDigit(r) {
			break
		}
		end = i + 1
	}

	code, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}

	return code
}

// Approved reports a response code in the successful verification range.
func Approved(code int) bool {
	return code > 0 && code < 50
}
