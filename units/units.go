package units

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"inbound/parsers"
)

// DefaultUOM is used when no Item_Master row supplies a unit.
const DefaultUOM = "EA"

var builtinAliases = map[string]string{
	"EA":     "EA",
	"EACH":   "EA",
	"PC":     "EA",
	"PCS":    "EA",
	"PIECE":  "EA",
	"PIECES": "EA",
	"UNIT":   "EA",
	"UNITS":  "EA",
	"BX":     "BX",
	"BOX":    "BX",
	"BOXES":  "BX",
	"CS":     "CS",
	"CASE":   "CS",
	"CASES":  "CS",
	"PK":     "PK",
	"PACK":   "PK",
	"PL":     "PL",
	"PLT":    "PL",
	"PALLET": "PL",
	"RL":     "RL",
	"ROLL":   "RL",
	"FT":     "FT",
	"FEET":   "FT",
	"M":      "M",
	"METER":  "M",
}

var (
	mu          sync.RWMutex
	internalMap = copyAliases(builtinAliases)
)

func copyAliases(src map[string]string) map[string]string {
	m := make(map[string]string, len(src))
	for k, v := range src {
		m[k] = v
	}
	return m
}

// LoadAliasFile reads an alias,code CSV (UTF-8) and merges it over the
// built-in aliases.
func LoadAliasFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadAliasFile: open %s: %w", path, err)
	}
	defer file.Close()
	return LoadAliases(file, parsers.EncodingUTF8)
}

// LoadAliases merges alias,code records from r over the built-in aliases.
func LoadAliases(r io.Reader, encoding string) (map[string]string, error) {
	reader, err := parsers.NewCSVReader(r, encoding)
	if err != nil {
		return nil, fmt.Errorf("LoadAliases: %w", err)
	}
	m := copyAliases(builtinAliases)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LoadAliases: read: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		alias := strings.ToUpper(strings.TrimSpace(record[0]))
		code := strings.ToUpper(strings.TrimSpace(record[1]))
		if alias == "" || code == "" || alias == "ALIAS" {
			continue
		}
		m[alias] = code
	}

	mu.Lock()
	internalMap = m
	mu.Unlock()
	return m, nil
}

// Normalize maps a unit of measure onto its canonical code. Unknown units
// are upper-cased and returned as is; blank stays blank.
func Normalize(uom string) string {
	key := strings.ToUpper(strings.TrimSpace(uom))
	if key == "" {
		return ""
	}
	mu.RLock()
	defer mu.RUnlock()
	if code, ok := internalMap[key]; ok {
		return code
	}
	return key
}

// OrDefault normalizes uom and falls back to DefaultUOM when blank.
func OrDefault(uom string) string {
	if n := Normalize(uom); n != "" {
		return n
	}
	return DefaultUOM
}

// Aliases returns a copy of the alias table in use.
func Aliases() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	return copyAliases(internalMap)
}
