package motion

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog 动画目录：完整名 -> 时长，简化名 -> 完整名
// 完整名可能带命名空间（emotes/wave），简化名取最后一个 "/" 之后的部分
type Catalog struct {
	names     []string
	durations map[string]time.Duration
	byShort   map[string]string
}

// Simplify 取最后一个 "/" 之后的部分
func Simplify(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// NewCatalog 以完整名列表与可选时长构造；简化名冲突时先出现者优先
func NewCatalog(names []string, durations map[string]time.Duration) *Catalog {
	c := &Catalog{
		durations: make(map[string]time.Duration, len(durations)),
		byShort:   make(map[string]string, len(names)),
	}
	for name, d := range durations {
		c.durations[name] = d
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		c.names = append(c.names, name)
		short := Simplify(name)
		if _, ok := c.byShort[short]; !ok {
			c.byShort[short] = name
		}
	}
	return c
}

// Names 完整名，按加入顺序
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// SimpleNames 去重后的简化名，作为匹配器的候选
func (c *Catalog) SimpleNames() []string {
	out := make([]string, 0, len(c.names))
	seen := make(map[string]bool, len(c.names))
	for _, name := range c.names {
		short := Simplify(name)
		if seen[short] {
			continue
		}
		seen[short] = true
		out = append(out, short)
	}
	return out
}

// Resolve 简化名映射回完整名；未知名字原样返回
func (c *Catalog) Resolve(name string) string {
	if c == nil {
		return name
	}
	for _, full := range c.names {
		if full == name {
			return name
		}
	}
	if full, ok := c.byShort[name]; ok {
		return full
	}
	return name
}

// Duration 动画时长（按完整名精确查找），未知时为 DefaultEmoteDuration
func (c *Catalog) Duration(full string) time.Duration {
	if c != nil {
		if d, ok := c.durations[full]; ok && d > 0 {
			return d
		}
	}
	return DefaultEmoteDuration
}

type catalogFile struct {
	Animations []struct {
		Name     string `yaml:"name"`
		Duration string `yaml:"duration"`
	} `yaml:"animations"`
}

// ParseCatalog 解析 YAML 动画目录
//
//	animations:
//	  - name: emotes/wave
//	    duration: 1.5s
//	  - name: idle
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	names := make([]string, 0, len(f.Animations))
	durations := make(map[string]time.Duration)
	for _, a := range f.Animations {
		if a.Name == "" {
			return nil, fmt.Errorf("parse catalog: animation without name")
		}
		names = append(names, a.Name)
		if a.Duration == "" {
			continue
		}
		d, err := time.ParseDuration(a.Duration)
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %s: %w", a.Name, err)
		}
		durations[a.Name] = d
	}
	return NewCatalog(names, durations), nil
}

// LoadCatalog 从文件读取动画目录
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}
