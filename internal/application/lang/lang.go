// Package lang serves the flat key→string locale dictionaries consumed by
// the frontend's i18n loader.
package lang

import (
	"embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed lang/*.json
var dictFS embed.FS

const DefaultLang = "en"

var (
	once  sync.Once
	dicts map[string]map[string]string
)

func load() {
	dicts = make(map[string]map[string]string)

	entries, err := dictFS.ReadDir("lang")
	if err != nil {
		panic(fmt.Sprintf("read embedded lang dir: %v", err))
	}

	for _, entry := range entries {
		data, err := dictFS.ReadFile("lang/" + entry.Name())
		if err != nil {
			panic(fmt.Sprintf("read embedded dictionary %s: %v", entry.Name(), err))
		}

		var dict map[string]string
		if err := json.Unmarshal(data, &dict); err != nil {
			panic(fmt.Sprintf("parse embedded dictionary %s: %v", entry.Name(), err))
		}

		code := entry.Name()[:len(entry.Name())-len(".json")]
		dicts[code] = dict
	}
}

// Dictionary returns the dictionary for a language code, falling back to
// English for unknown codes.
func Dictionary(code string) map[string]string {
	once.Do(load)

	if dict, ok := dicts[code]; ok {
		return dict
	}

	return dicts[DefaultLang]
}

// Supported lists the embedded language codes.
func Supported() []string {
	once.Do(load)

	codes := make([]string, 0, len(dicts))
	for code := range dicts {
		codes = append(codes, code)
	}

	return codes
}
