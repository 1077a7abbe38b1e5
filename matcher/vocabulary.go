package matcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Vocabulary 意图短语与同义词表
// Intents 在匹配前从输入中剔除；Synonyms 命中整词时把规范词追加到输入末尾
type Vocabulary struct {
	Intents  []string          `yaml:"intents"`
	Synonyms map[string]string `yaml:"synonyms"`
}

// DefaultVocabulary 内置词表
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Intents: []string{
			// 动作动词
			"do", "make", "show", "play", "perform", "trigger", "start", "animate", "animation",
			"can you", "could you", "please", "try", "do a", "do an", "do the", "do some",
			// 礼貌请求
			"i want", "i would like", "let me see", "give me", "how about",
			"could i", "would you", "would it", "let us", "let me", "may i", "may we",
			"i need", "i wish", "i hope", "i feel", "i think", "i see", "i like", "i love", "i hate",
			"i am", "i was", "i will", "i shall", "i must", "i should", "i can", "i could", "i would",
			"i might", "i may", "i want to", "i wanna", "i gotta",
			// 复合请求
			"could we", "could you please", "would you please", "can you please", "please can you",
			"please do", "please show", "please make", "please play", "please perform",
			"please trigger", "please start", "please animate", "please give", "please let",
			"please let me", "please let us",
		},
		Synonyms: map[string]string{
			"hello":     "wave",
			"hi":        "wave",
			"hey":       "wave",
			"greet":     "wave",
			"greeting":  "wave",
			"laugh":     "laughing",
			"chuckle":   "laughing",
			"giggle":    "laughing",
			"grin":      "smile",
			"smirk":     "smile",
			"happy":     "smile",
			"sad":       "cry",
			"frown":     "cry",
			"upset":     "cry",
			"rage":      "angry",
			"mad":       "angry",
			"furious":   "angry",
			"move":      "run",
			"walk":      "run",
			"jog":       "run",
			"sprint":    "run",
			"go":        "run",
			"leap":      "jump",
			"hop":       "jump",
			"spring":    "jump",
			"bound":     "jump",
			"praise":    "cheer",
			"celebrate": "cheer",
			"shout":     "cheer",
			"yell":      "cheer",
		},
	}
}

// ParseVocabulary 解析 YAML 词表；缺省的部分沿用内置词表
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	def := DefaultVocabulary()
	if len(v.Intents) == 0 {
		v.Intents = def.Intents
	}
	if len(v.Synonyms) == 0 {
		v.Synonyms = def.Synonyms
	}
	return v, nil
}

// LoadVocabulary 从 YAML 文件读取词表
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}
