// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package validation

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// unsafeElements are dropped together with their content.
var unsafeElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// StripHTML returns the plain text of s. Tags and comments are removed, the content of unsafe
// elements like script and style is dropped and entities are decoded.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail, either way the text so far is all there is
			return sb.String()
		case html.StartTagToken:
			if unsafeElements[tagAtom(tokenizer)] {
				skip++
			}
		case html.EndTagToken:
			if unsafeElements[tagAtom(tokenizer)] && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(tokenizer.Text())
			}
		}
	}
}

// SanitizeHTML keeps harmless markup but removes unsafe elements with their content, comments,
// inline event handlers, style attributes and script URIs.
func SanitizeHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var sb strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			return sb.String()
		}
		token := tokenizer.Token()
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			if unsafeElements[token.DataAtom] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip == 0 {
				token.Attr = safeAttributes(token.Attr)
				sb.WriteString(token.String())
			}
		case html.EndTagToken:
			if unsafeElements[token.DataAtom] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip == 0 {
				sb.WriteString(token.String())
			}
		case html.TextToken:
			if skip == 0 {
				sb.WriteString(token.String())
			}
		}
	}
}

func tagAtom(tokenizer *html.Tokenizer) atom.Atom {
	name, _ := tokenizer.TagName()
	return atom.Lookup(name)
}

func safeAttributes(attrs []html.Attribute) []html.Attribute {
	safe := attrs[:0]
	for _, attr := range attrs {
		key := strings.ToLower(attr.Key)
		if strings.HasPrefix(key, "on") || key == "style" || key == "srcdoc" {
			continue
		}
		if ContainsDangerousContent(attr.Val) {
			continue
		}
		safe = append(safe, attr)
	}
	return safe
}
