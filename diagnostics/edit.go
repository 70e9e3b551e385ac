package diagnostics

import (
	"fmt"
	"sort"
)

// Finding is a lambda that can be replaced with a method reference
type Finding struct {
	Path        string `json:"path"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Lambda      string `json:"lambda"`
	Replacement string `json:"replacement"`
	Edit        Edit   `json:"edit"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: lambda can be replaced with method reference %s", f.Path, f.Line, f.Column, f.Replacement)
}

// Edit replaces the bytes [Start, End) of a file with Text
type Edit struct {
	Start uint   `json:"start"`
	End   uint   `json:"end"`
	Text  string `json:"text"`
}

// Contains reports whether other lies within e
func (e Edit) Contains(other Edit) bool {
	return e.Start <= other.Start && other.End <= e.End
}

// Overlaps reports whether the two edits touch a common byte
func (e Edit) Overlaps(other Edit) bool {
	return e.Start < other.End && other.Start < e.End
}

// ApplyEdits applies edits to source. When edits overlap the one covering the
// larger range wins and the others are dropped; the dropped edits are returned.
func ApplyEdits(source []byte, edits []Edit) ([]byte, []Edit, error) {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		li, lj := ordered[i].End-ordered[i].Start, ordered[j].End-ordered[j].Start
		if li != lj {
			return li > lj
		}
		return ordered[i].Start < ordered[j].Start
	})
	var kept, dropped []Edit
	for _, e := range ordered {
		if e.Start > e.End || int(e.End) > len(source) {
			return nil, nil, fmt.Errorf("edit [%d, %d) outside source of length %d", e.Start, e.End, len(source))
		}
		overlapping := false
		for _, k := range kept {
			if k.Overlaps(e) {
				overlapping = true
				break
			}
		}
		if overlapping {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	result := make([]byte, 0, len(source))
	var last uint
	for _, e := range kept {
		result = append(result, source[last:e.Start]...)
		result = append(result, e.Text...)
		last = e.End
	}
	result = append(result, source[last:]...)
	return result, dropped, nil
}
