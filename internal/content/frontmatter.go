// 包 content 负责从磁盘读取内容集合（src/content/<集合>/）：
// - 拆分 Markdown 文件头部的 YAML front matter
// - 支持 .md/.mdx/.yaml/.yml/.json 文件
// - 逐条交给 schema 校验，单条失败不影响整批
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoFrontMatter 表示 Markdown 文件缺少 --- 包裹的头部。
var ErrNoFrontMatter = errors.New("no front matter")

var delim = []byte("---")

// SplitFrontMatter 拆分 Markdown 文档：返回 YAML 头部解码后的 map 与正文。
func SplitFrontMatter(b []byte) (map[string]any, []byte, error) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	first, rest, ok := cutLine(b)
	if !ok && len(first) == 0 {
		return nil, nil, ErrNoFrontMatter
	}
	if !bytes.Equal(bytes.TrimRight(first, " \t\r"), delim) {
		return nil, nil, ErrNoFrontMatter
	}
	var head []byte
	for {
		line, next, more := cutLine(rest)
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), delim) {
			m, err := decodeYAML(head)
			if err != nil {
				return nil, nil, err
			}
			return m, next, nil
		}
		head = append(head, line...)
		head = append(head, '\n')
		if !more {
			return nil, nil, fmt.Errorf("unterminated front matter: %w", ErrNoFrontMatter)
		}
		rest = next
	}
}

// cutLine 切出第一行（不含换行符）。
func cutLine(b []byte) (line, rest []byte, ok bool) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, false
}

func decodeYAML(b []byte) (map[string]any, error) {
	m := map[string]any{}
	if len(bytes.TrimSpace(b)) == 0 {
		return m, nil
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return m, nil
}

// ParseFile 按扩展名解析一个内容文件，返回原始记录。
func ParseFile(name string, b []byte) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx", ".markdown":
		m, _, err := SplitFrontMatter(b)
		return m, err
	case ".yaml", ".yml":
		return decodeYAML(b)
	case ".json":
		m := map[string]any{}
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported content file %s", name)
	}
}

// Supported 判断文件扩展名是否为内容文件。
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".mdx", ".markdown", ".yaml", ".yml", ".json":
		return true
	}
	return false
}
