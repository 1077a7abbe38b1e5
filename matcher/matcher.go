// Package matcher 把自由文本映射为候选动画名
//
// 流程：规范化 -> 剔除意图短语 -> 追加同义词 -> 分层匹配
// （精确、前缀、子串、模糊），都未命中时随机挑一个候选。
package matcher

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"emotechat/protocol"
)

const (
	// DefaultCutoff 模糊匹配的归一化编辑距离上限（越小越严格）
	DefaultCutoff = 0.5
	// MinTokenLen 参与模糊匹配的最短词长
	MinTokenLen = 2
)

// Matcher 持有词表与随机源；可并发使用
type Matcher struct {
	intents  [][]string // 按词数、字符数从长到短
	synonyms []synonym  // 同上
	cutoff   float64

	mu  sync.Mutex
	rng *rand.Rand
}

type synonym struct {
	words     []string
	canonical string
}

// New 创建匹配器；rng 为 nil 时使用当前时间作为种子
func New(v Vocabulary, rng *rand.Rand) *Matcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Matcher{cutoff: DefaultCutoff, rng: rng}
	for _, phrase := range v.Intents {
		if words := strings.Fields(normalize(phrase)); len(words) > 0 {
			m.intents = append(m.intents, words)
		}
	}
	sort.SliceStable(m.intents, func(i, j int) bool {
		return longer(m.intents[i], m.intents[j])
	})
	for key, canonical := range v.Synonyms {
		words := strings.Fields(normalize(key))
		canon := normalize(canonical)
		if len(words) == 0 || canon == "" {
			continue
		}
		m.synonyms = append(m.synonyms, synonym{words: words, canonical: canon})
	}
	sort.Slice(m.synonyms, func(i, j int) bool {
		a, b := m.synonyms[i].words, m.synonyms[j].words
		if len(a) != len(b) || len(strings.Join(a, " ")) != len(strings.Join(b, " ")) {
			return longer(a, b)
		}
		return strings.Join(a, " ") < strings.Join(b, " ")
	})
	return m
}

func longer(a, b []string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return len(strings.Join(a, " ")) > len(strings.Join(b, " "))
}

var (
	defaultOnce    sync.Once
	defaultMatcher *Matcher
)

// Default 使用内置词表的共享匹配器
func Default() *Matcher {
	defaultOnce.Do(func() {
		defaultMatcher = New(DefaultVocabulary(), nil)
	})
	return defaultMatcher
}

// FindBestAnimation 使用 Default 匹配器
func FindBestAnimation(text string, candidates []string) (string, bool) {
	return Default().FindBestAnimation(text, candidates)
}

// FindBestAnimation 返回最匹配的候选名
// 剔除意图短语后为空返回 false；没有候选时返回 "idle"
func (m *Matcher) FindBestAnimation(text string, candidates []string) (string, bool) {
	stripped := m.StripIntent(text)
	if stripped == "" {
		return "", false
	}
	if len(candidates) == 0 {
		return protocol.IdleAnimation, true
	}

	terms := append([]string{stripped}, m.canonicalTerms(stripped)...)
	keys := make([]string, len(candidates))
	for i, c := range candidates {
		keys[i] = candidateKey(c)
	}

	for _, term := range terms {
		for i, k := range keys {
			if k == term {
				return candidates[i], true
			}
		}
	}
	for _, term := range terms {
		if i := shortestMatch(keys, term, strings.HasPrefix); i >= 0 {
			return candidates[i], true
		}
	}
	for _, term := range terms {
		if i := shortestMatch(keys, term, strings.Contains); i >= 0 {
			return candidates[i], true
		}
	}
	if i := m.fuzzy(keys, fuzzyTerms(terms)); i >= 0 {
		return candidates[i], true
	}

	m.mu.Lock()
	i := m.rng.Intn(len(candidates))
	m.mu.Unlock()
	return candidates[i], true
}

// StripIntent 规范化并剔除意图短语（整词匹配，长短语优先）
func (m *Matcher) StripIntent(text string) string {
	words := strings.Fields(normalize(text))
	for _, phrase := range m.intents {
		words = removePhrase(words, phrase)
	}
	return strings.Join(words, " ")
}

// ExpandSynonyms 在文本末尾追加命中的同义词规范词
func (m *Matcher) ExpandSynonyms(text string) string {
	canon := m.canonicalTerms(text)
	if len(canon) == 0 {
		return text
	}
	return text + " " + strings.Join(canon, " ")
}

// canonicalTerms 按在文本中出现的顺序返回去重后的规范词
func (m *Matcher) canonicalTerms(text string) []string {
	words := strings.Fields(text)
	var out []string
	seen := make(map[string]bool)
	for i := range words {
		for _, syn := range m.synonyms {
			if !hasPrefixWords(words[i:], syn.words) || seen[syn.canonical] {
				continue
			}
			seen[syn.canonical] = true
			out = append(out, syn.canonical)
		}
	}
	return out
}

func removePhrase(words, phrase []string) []string {
	out := words[:0:0]
	for i := 0; i < len(words); {
		if hasPrefixWords(words[i:], phrase) {
			i += len(phrase)
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

func hasPrefixWords(words, prefix []string) bool {
	if len(prefix) > len(words) {
		return false
	}
	for i, p := range prefix {
		if words[i] != p {
			return false
		}
	}
	return true
}

// shortestMatch 返回满足 match(key, term) 的最短 key 的下标；等长时取先出现者
func shortestMatch(keys []string, term string, match func(s, sub string) bool) int {
	best := -1
	for i, k := range keys {
		if !match(k, term) {
			continue
		}
		if best < 0 || len(k) < len(keys[best]) {
			best = i
		}
	}
	return best
}
