package excel

// SourceData represents a file as read: trimmed headers and raw string rows
type SourceData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, padded to len(Headers)
}
