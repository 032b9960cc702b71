package devserver

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// clientTag loads the live-reload client.
const clientTag = `<script src="` + clientPath + `"></script>`

// InjectClient inserts the live-reload client script before the closing body
// tag of doc. Documents without a body tag get the script appended. The rest
// of the document is left byte for byte as it was.
func InjectClient(doc []byte) []byte {
	at := closingTagOffset(doc, atom.Body)
	if at < 0 {
		at = closingTagOffset(doc, atom.Html)
	}
	if at < 0 {
		at = len(doc)
	}

	out := make([]byte, 0, len(doc)+len(clientTag))
	out = append(out, doc[:at]...)
	out = append(out, clientTag...)
	return append(out, doc[at:]...)
}

// closingTagOffset returns the byte offset of the last end tag a in doc, or -1.
func closingTagOffset(doc []byte, a atom.Atom) int {
	z := html.NewTokenizer(bytes.NewReader(doc))
	offset, found := 0, -1
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return found
		}
		n := len(z.Raw())
		if tt == html.EndTagToken {
			name, _ := z.TagName()
			if atom.Lookup(name) == a {
				found = offset
			}
		}
		offset += n
	}
}
