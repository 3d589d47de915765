// internal/domain/keyword/keyword.go
package keyword

import (
	"strings"

	"tablenote/internal/domain/common"
)

// Keyword はレビューに付けられる定型タグです。
// 集合は固定で、未知の値は検証で弾きます。
type Keyword string

const (
	Tasty        Keyword = "TASTY"
	Fresh        Keyword = "FRESH"
	Clean        Keyword = "CLEAN"
	Kind         Keyword = "KIND"
	Cozy         Keyword = "COZY"
	GoodValue    Keyword = "GOOD_VALUE"
	LargePortion Keyword = "LARGE_PORTION"
	GoodForSolo  Keyword = "GOOD_FOR_SOLO"
)

// All is the fixed catalog (order is presentation order).
func All() []Keyword {
	return []Keyword{
		Tasty, Fresh, Clean, Kind, Cozy, GoodValue, LargePortion, GoodForSolo,
	}
}

// Parse normalizes and validates a raw tag value.
func Parse(raw string) (Keyword, error) {
	v := Keyword(strings.ToUpper(strings.TrimSpace(raw)))
	for _, k := range All() {
		if v == k {
			return k, nil
		}
	}
	return "", common.Validationf("keyword: unknown tag %q", raw)
}

// ParseAll validates a list of raw tags, preserving order and rejecting duplicates.
func ParseAll(raws []string) ([]Keyword, error) {
	out := make([]Keyword, 0, len(raws))
	seen := make(map[Keyword]struct{}, len(raws))
	for _, r := range raws {
		k, err := Parse(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[k]; dup {
			return nil, common.Validationf("keyword: duplicate tag %q", r)
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}
