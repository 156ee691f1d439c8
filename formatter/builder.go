package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	tt "github.com/gnolang/lambdaloc/internal/types"
)

const (
	tabWidth   = 8
	unresolved = "<unresolved>"
)

var (
	foundStyle   = color.New(color.FgGreen, color.Bold)
	missStyle    = color.New(color.FgHiYellow, color.Bold)
	methodStyle  = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	caretStyle   = color.New(color.FgGreen, color.Bold)
	detailStyle  = color.New(color.FgWhite)
	noteStyle    = color.New(color.FgGreen, color.Bold)
	locationTmpl = template.Must(template.New("location").Funcs(template.FuncMap{
		"header":  header,
		"snippet": codeSnippet,
		"caret":   caret,
		"details": details,
		"note":    note,
	}).Parse(`{{header .Found .Method .MaxLineNumWidth .Filename .Line .Column}}
{{snippet .SnippetLines .Line .MaxLineNumWidth .CommonIndent .Padding}}
{{caret .Padding .Line .Column .SnippetLines .CommonIndent}}
{{- if .Found}}
{{details .Padding .Signature .TypeName .Symbol}}
{{- end}}
{{- if .Note}}
{{note .Padding .Note}}
{{- end}}
`))
)

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}

type LocationData struct {
	Found           bool
	Method          string
	Signature       string
	TypeName        string
	Symbol          string
	Note            string
	Filename        string
	Line            int
	Column          int
	MaxLineNumWidth int
	Padding         string
	CommonIndent    string
	SnippetLines    []string
}

// FormatLocations renders every location against the file's source.
func FormatLocations(locs []tt.Location, code *SourceCode) string {
	var builder strings.Builder
	for _, loc := range locs {
		builder.WriteString(FormatLocation(loc, code))
	}
	return builder.String()
}

// FormatLocation renders one lookup result as a header, the source line
// with a caret under the cursor, and the resolved closure details.
func FormatLocation(loc tt.Location, code *SourceCode) string {
	if code == nil {
		code = &SourceCode{}
	}
	maxLineNumWidth := len(fmt.Sprintf("%d", loc.Line))

	var commonIndent string
	if isValidLine(loc.Line, code.Lines) {
		commonIndent = findCommonIndent(code.Lines[loc.Line-1 : loc.Line])
	}

	data := LocationData{
		Found:           loc.Found,
		Method:          loc.Method,
		Signature:       loc.Signature,
		TypeName:        loc.TypeName,
		Symbol:          loc.Symbol,
		Note:            loc.Note,
		Filename:        loc.Filename,
		Line:            loc.Line,
		Column:          loc.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		CommonIndent:    commonIndent,
		SnippetLines:    code.Lines,
	}

	var buf bytes.Buffer
	if err := locationTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting location: %v", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(found bool, method string, maxLineNumWidth int, filename string, line, column int) string {
	var endString string
	if found {
		if method == "" {
			method = unresolved
		}
		endString = foundStyle.Sprint("lambda: ")
		endString += methodStyle.Sprintf("%s\n", method)
	} else {
		endString = missStyle.Sprint("no lambda starts here\n")
	}

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d", filename, line, column)
	return endString
}

func codeSnippet(snippetLines []string, line int, maxLineNumWidth int, commonIndent string, padding string) string {
	endString := lineStyle.Sprintf("%s|", padding)
	if !isValidLine(line, snippetLines) {
		return endString
	}

	text := strings.TrimPrefix(snippetLines[line-1], commonIndent)
	lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
	endString += "\n" + lineStyle.Sprintf("%s | ", lineNum) + text
	return endString
}

func caret(padding string, line, column int, snippetLines []string, commonIndent string) string {
	endString := lineStyle.Sprintf("%s|", padding)
	if !isValidLine(line, snippetLines) || column < 1 {
		return endString
	}

	commonIndentWidth := calculateVisualColumn(commonIndent, len(commonIndent)+1)
	start := calculateVisualColumn(snippetLines[line-1], column) - commonIndentWidth
	if start < 0 {
		start = 0
	}
	return endString + " " + strings.Repeat(" ", start) + caretStyle.Sprint("^")
}

func details(padding, signature, typeName, symbol string) string {
	if signature == "" {
		signature = unresolved
	}
	lines := []string{
		lineStyle.Sprintf("%s= ", padding) + detailStyle.Sprintf("signature: %s", signature),
	}
	if typeName != "" {
		lines = append(lines, lineStyle.Sprintf("%s= ", padding)+detailStyle.Sprintf("type: %s", typeName))
	}
	if symbol != "" {
		lines = append(lines, lineStyle.Sprintf("%s= ", padding)+detailStyle.Sprintf("symbol: %s", symbol))
	}
	return strings.Join(lines, "\n")
}

func note(padding, note string) string {
	return lineStyle.Sprintf("%s= ", padding) + noteStyle.Sprint("note: ") + note
}

func isValidLine(line int, snippetLines []string) bool {
	return line > 0 && line <= len(snippetLines)
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}

// findCommonIndent finds the common indent in the code snippet.
func findCommonIndent(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	// find first non-empty line's indent
	firstIndent := make([]rune, 0)
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed != "" {
			firstIndent = []rune(line[:len(line)-len(trimmed)])
			break
		}
	}

	if len(firstIndent) == 0 {
		return ""
	}

	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}

		currentIndent := []rune(line[:len(line)-len(trimmed)])
		firstIndent = commonPrefix(firstIndent, currentIndent)

		if len(firstIndent) == 0 {
			break
		}
	}

	return string(firstIndent)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
