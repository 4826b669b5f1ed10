package document

import (
	"github.com/f4ah6o/docstyler-go/internal/host"
)

// ReplaceAll substitutes every occurrence of find with replace across the
// editor and returns how many were replaced. A match spread over several
// text nodes is rewritten into the first of them, so afterwards each
// occurrence sits in one contiguous text run. The selection is cleared.
func (d *Document) ReplaceAll(find, replace string, matchCase bool) int {
	if find == "" {
		return 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	opts := host.FindOptions{MatchCase: matchCase}
	count := 0
	from := 0
	for {
		ft := d.flatten()
		start, n := ft.search(find, from, len(ft.text), opts)
		if start < 0 {
			break
		}
		segs := ft.overlapping(host.Range{Start: start, End: start + n})
		if len(segs) == 0 {
			from = start + n
			continue
		}

		for i, s := range segs {
			hi := min(start+n, s.end) - s.start
			if i == 0 {
				lo := start - s.start
				s.node.Data = s.node.Data[:lo] + replace + s.node.Data[hi:]
				continue
			}
			s.node.Data = s.node.Data[hi:]
			if s.node.Data == "" && s.node.Parent != nil {
				s.node.Parent.RemoveChild(s.node)
			}
		}

		count++
		from = start + len(replace)
	}

	d.hasSel = false
	d.sel = host.Range{}
	if count > 0 {
		d.logger.Printf("Replaced %d occurrence(s) of %q", count, find)
	}
	return count
}
