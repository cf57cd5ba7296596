package playlist

const DefaultPageSize = 15

type Page struct {
	Entries []Entry
	// Offset is the zero-based index of Entries[0] in the full listing.
	Offset int
	Number int
	Count  int
}

// Paginate returns page number (zero-based) of entries, clamped to the
// valid range.
func Paginate(entries []Entry, pageSize, number int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	count := (len(entries) + pageSize - 1) / pageSize
	if count == 0 {
		return Page{Count: 0}
	}
	if number < 0 {
		number = 0
	}
	if number >= count {
		number = count - 1
	}
	start := number * pageSize
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}
	return Page{Entries: entries[start:end], Offset: start, Number: number, Count: count}
}

// DefaultSelection returns the 1-based listing position to offer as the
// default, or 0 for none. A remembered id wins on every page; otherwise the
// remembered position is offered only on the first page.
func DefaultSelection(entries []Entry, page int, lastID string, lastIndex int) int {
	if lastID != "" {
		for i, entry := range entries {
			if entry.ID == lastID {
				return i + 1
			}
		}
	}
	if page == 0 && lastIndex >= 1 && lastIndex <= len(entries) {
		return lastIndex
	}
	return 0
}
