package pager

// NextOffset returns first visible line after key is applied to a viewport
// of pageSize lines over lineCount lines starting at offset. Result is
// always within [0, max(0, lineCount-pageSize)].
func NextOffset(offset int, key Key, lineCount, pageSize int) int {
	maxOffset := max(0, lineCount-pageSize)
	halfPage := max(1, pageSize/2)

	switch key {
	case KeyUp:
		offset--
	case KeyDown:
		offset++
	case KeyHalfUp:
		offset -= halfPage
	case KeyHalfDown:
		offset += halfPage
	}
	return min(max(0, offset), maxOffset)
}

// Visible returns lines shown by viewport at offset.
func Visible(lines []string, offset, pageSize int) []string {
	end := min(len(lines), max(0, offset)+max(0, pageSize))
	start := min(max(0, offset), end)
	return lines[start:end]
}
