package types

import "go/token"

// Location describes the result of a lambda lookup at a cursor position.
// Method, Signature and TypeName are empty when they could not be resolved.
type Location struct {
	Filename  string         `json:"filename"`
	Line      int            `json:"line"`
	Column    int            `json:"column"`
	Found     bool           `json:"found"`
	Start     token.Position `json:"start"`
	End       token.Position `json:"end"`
	Method    string         `json:"method,omitempty"`
	Signature string         `json:"signature,omitempty"`
	TypeName  string         `json:"type_name,omitempty"`
	// Symbol is the full symbol name of the closure, e.g. "example.(*T).M.func1".
	Symbol string `json:"symbol,omitempty"`
	// Note explains a miss, e.g. the kind of node found under the cursor.
	Note string `json:"note,omitempty"`
}
