// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed defaults/*.json
var defaultsFS embed.FS

// StaticDefaults returns the built-in documents used when neither the requested nor the
// default language could be fetched. Not every document has a static default.
func StaticDefaults() map[Document]json.RawMessage {
	defaults, err := loadDefaults(defaultsFS, "defaults")
	if err != nil {
		panic(fmt.Sprintf("invalid embedded content defaults: %s", err))
	}
	return defaults
}

func loadDefaults(fsys fs.FS, dir string) (map[Document]json.RawMessage, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults directory: %w", err)
	}

	defaults := make(map[Document]json.RawMessage, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		doc, ok := ParseDocument(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDocument, name)
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read default for %s: %w", doc, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("default for %s is not valid JSON", doc)
		}
		defaults[doc] = data
	}
	return defaults, nil
}
