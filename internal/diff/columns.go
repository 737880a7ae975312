package diff

// ColumnDiff describes header names present in only one table
type ColumnDiff struct {
	OnlyA     []string `json:"only_a"`
	OnlyB     []string `json:"only_b"`
	Common    []string `json:"common"`
	Identical bool     `json:"identical"`
}

// DiffColumns compares two header lists by exact name. Order and duplicates
// of the first argument are preserved in OnlyA and Common.
func DiffColumns(headersA, headersB []string) ColumnDiff {
	inA := toSet(headersA)
	inB := toSet(headersB)

	d := ColumnDiff{
		OnlyA:  []string{},
		OnlyB:  []string{},
		Common: []string{},
	}
	for _, h := range headersA {
		if _, ok := inB[h]; ok {
			d.Common = append(d.Common, h)
		} else {
			d.OnlyA = append(d.OnlyA, h)
		}
	}
	for _, h := range headersB {
		if _, ok := inA[h]; !ok {
			d.OnlyB = append(d.OnlyB, h)
		}
	}
	d.Identical = len(d.OnlyA) == 0 && len(d.OnlyB) == 0
	return d
}

// KeyCandidates lists headers of A that also exist in B, deduplicated, in
// A's order. Any of them is a valid key column.
func KeyCandidates(headersA, headersB []string) []string {
	inB := toSet(headersB)
	seen := make(map[string]struct{}, len(headersA))
	out := []string{}
	for _, h := range headersA {
		if _, ok := inB[h]; !ok {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
