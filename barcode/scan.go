package barcode

import (
	"fmt"
	"strings"
)

// Result holds the application identifiers found in a GS1-128 scan.
type Result struct {
	SSCC      string // (00) serial shipping container code, 18 digits
	Gtin14    string // (01) GTIN, 14 digits
	LotNumber string // (10) lot, variable length
}

const groupSeparator = "\x1d"

// aiLengths holds the maximum length of variable-length AIs.
var aiLengths = map[string]int{
	"10": 20,
}

// NormalizeScan turns raw scanner input into the lookup key for a skid or
// container. GS1-128 input yields its SSCC (or GTIN); anything else is
// returned trimmed.
func NormalizeScan(code string) string {
	code = strings.TrimSpace(code)
	if !looksLikeGS1(code) {
		return code
	}
	res, err := Parse(code)
	if err != nil {
		return code
	}
	if res.SSCC != "" {
		return res.SSCC
	}
	return res.Gtin14
}

func looksLikeGS1(code string) bool {
	if strings.HasPrefix(code, "]C1") || strings.HasPrefix(code, "(00)") || strings.HasPrefix(code, "(01)") {
		return true
	}
	if strings.Contains(code, groupSeparator) {
		return true
	}
	return len(code) >= 20 && strings.HasPrefix(code, "00") && isDigits(code[2:20])
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Parse decodes a GS1-128 element string (AIs 00, 01 and 10). Human
// readable parentheses and the ]C1 symbology identifier are accepted.
func Parse(code string) (*Result, error) {
	code = strings.TrimPrefix(strings.TrimSpace(code), "]C1")
	code = strings.NewReplacer("(", "", ")", "").Replace(code)
	if code == "" {
		return nil, fmt.Errorf("empty barcode")
	}

	result := &Result{}
	i := 0
	length := len(code)
	for i < length {
		if strings.HasPrefix(code[i:], groupSeparator) {
			i++
			continue
		}
		switch {
		case strings.HasPrefix(code[i:], "00"):
			if i+20 > length {
				return nil, fmt.Errorf("AI(00) data too short")
			}
			result.SSCC = code[i+2 : i+20]
			i += 20
		case strings.HasPrefix(code[i:], "01"):
			if i+16 > length {
				return nil, fmt.Errorf("AI(01) data too short")
			}
			result.Gtin14 = code[i+2 : i+16]
			i += 16
		case strings.HasPrefix(code[i:], "10"):
			dataStart := i + 2
			dataEnd := dataStart
			for dataEnd < length && dataEnd-dataStart < aiLengths["10"] {
				if strings.HasPrefix(code[dataEnd:], groupSeparator) {
					break
				}
				dataEnd++
			}
			result.LotNumber = code[dataStart:dataEnd]
			i = dataEnd
		default:
			// unknown AI: stop, the remainder is not ours to interpret
			i = length
		}
	}

	if result.SSCC == "" && result.Gtin14 == "" {
		return nil, fmt.Errorf("no SSCC or GTIN found in barcode")
	}
	return result, nil
}
