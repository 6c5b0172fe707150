// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package content

import (
	"slices"
	"strings"
)

// Document names a content section. The set of documents is closed, see Documents.
type Document string

const (
	Hero       Document = "hero"
	About      Document = "about"
	Skills     Document = "skills"
	Projects   Document = "projects"
	Experience Document = "experience"
	Contact    Document = "contact"
)

var documents = []Document{Hero, About, Skills, Projects, Experience, Contact}

// Documents returns all known documents.
func Documents() []Document {
	return slices.Clone(documents)
}

// Valid reports whether d is a known document.
func (d Document) Valid() bool {
	return slices.Contains(documents, d)
}

func (d Document) String() string {
	return string(d)
}

// ParseDocument returns the known document for name, ignoring case and surrounding space.
func ParseDocument(name string) (Document, bool) {
	doc := Document(strings.ToLower(strings.TrimSpace(name)))
	return doc, doc.Valid()
}

// Key identifies a cache entry. Language is always normalized.
type Key struct {
	Language string
	Document Document
}

func NewKey(language string, document Document) Key {
	return Key{Language: language, Document: document}
}

// String returns the key as "{language}/{document}", e.g. "ar/projects".
func (k Key) String() string {
	return k.Language + "/" + string(k.Document)
}
