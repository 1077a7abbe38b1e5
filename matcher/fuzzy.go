package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyTerms 模糊层的查询词：完整短语 + 每个长度达标的单词
func fuzzyTerms(terms []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if len([]rune(s)) < MinTokenLen || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, t := range terms {
		add(t)
		for _, w := range strings.Fields(t) {
			add(w)
		}
	}
	return out
}

// fuzzy 返回归一化距离最小且低于 cutoff 的候选下标；同分取较短的名字
func (m *Matcher) fuzzy(keys []string, terms []string) int {
	best, bestScore := -1, 2.0
	for i, k := range keys {
		if k == "" {
			continue
		}
		score := 2.0
		for _, t := range terms {
			if s := substringDistance(t, k); s < score {
				score = s
			}
		}
		if score >= m.cutoff {
			continue
		}
		if best < 0 || score < bestScore || (score == bestScore && len(k) < len(keys[best])) {
			best, bestScore = i, score
		}
	}
	return best
}

// substringDistance term 与 key 中任意近似等长片段（长度 ±1）之间的最小归一化编辑距离
// 取值 [0, 1]，0 表示 key 中包含 term
func substringDistance(term, key string) float64 {
	t := []rune(term)
	k := []rune(key)
	if len(t) == 0 {
		return 1
	}
	if len(k) <= len(t) {
		return normalized(term, key)
	}

	best := normalized(term, key)
	for size := len(t) - 1; size <= len(t)+1; size++ {
		if size < 1 || size > len(k) {
			continue
		}
		for start := 0; start+size <= len(k); start++ {
			if d := normalized(term, string(k[start:start+size])); d < best {
				best = d
			}
		}
	}
	return best
}

func normalized(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
