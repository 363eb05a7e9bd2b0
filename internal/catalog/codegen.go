package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"inventory-service/internal/model"
)

// CodePolicy derives the next human-readable product code from the
// codes already in use. Implementations must return a code that is not
// currently assigned to any live product.
type CodePolicy interface {
	Next(existing []model.Product, category string) string
}

// CodePolicyByName resolves a configured policy name. Unknown names
// fall back to the category-scoped policy.
func CodePolicyByName(name string) CodePolicy {
	switch strings.ToLower(name) {
	case "flat":
		return FlatCodePolicy{Prefix: "PR"}
	default:
		return CategoryCodePolicy{}
	}
}

// CategoryCodePolicy scopes the numeric sequence to a two-letter
// category prefix: the first product in "Storage" gets ST0001, the
// next ST0002, independent of codes under other prefixes.
type CategoryCodePolicy struct{}

func (CategoryCodePolicy) Next(existing []model.Product, category string) string {
	prefix := categoryPrefix(category)

	max := 0
	for _, p := range existing {
		if !strings.HasPrefix(p.Code, prefix) {
			continue
		}
		if n, err := strconv.Atoi(p.Code[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, max+1)
}

// categoryPrefix uppercases the first two runes of the category,
// padding with X when the category is shorter than two characters.
func categoryPrefix(category string) string {
	runes := []rune(strings.ToUpper(strings.TrimSpace(category)))
	for len(runes) < 2 {
		runes = append(runes, 'X')
	}
	return string(runes[:2])
}

var codePattern = regexp.MustCompile(`^[A-Z]+(\d+)$`)

// FlatCodePolicy ignores the category and keeps a single global
// sequence under a fixed prefix, e.g. PR0001, PR0002. This matches the
// demo-mode numbering where every product shares the PR prefix.
type FlatCodePolicy struct {
	Prefix string
}

func (f FlatCodePolicy) Next(existing []model.Product, _ string) string {
	max := 0
	for _, p := range existing {
		m := codePattern.FindStringSubmatch(p.Code)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", f.Prefix, max+1)
}
