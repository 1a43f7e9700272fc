package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-aidevdaily/internal/schema"
)

// Entry 为一条通过校验的内容记录。
type Entry struct {
	Kind schema.Kind
	Slug string
	Path string
	Data any // *model.BlogPost | *model.CollectionTool | *model.Author
}

// Failure 为一条未通过校验（或无法解析）的内容文件。
type Failure struct {
	Path string
	Err  error
}

// Violations 返回 schema 违规明细；解析错误时为空。
func (f Failure) Violations() []schema.Violation {
	var ve *schema.ValidationError
	if errors.As(f.Err, &ve) {
		return ve.Violations
	}
	return nil
}

// Report 为一个集合的加载结果。
type Report struct {
	Kind     schema.Kind
	Entries  []Entry
	Failures []Failure
}

// LoadCollection 读取 root/<kind>/ 下的全部内容文件并逐个校验。
// 目录不存在视为空集合；单个文件失败记录在 Failures 中，不中断整批。
func LoadCollection(root string, kind schema.Kind) (Report, error) {
	rep := Report{Kind: kind}
	dir := filepath.Join(root, string(kind))
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return rep, nil
	}
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_") {
			return nil
		}
		if Supported(d.Name()) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	for _, p := range paths {
		e, err := loadFile(dir, p, kind)
		if err != nil {
			rep.Failures = append(rep.Failures, Failure{Path: p, Err: err})
			continue
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rep, nil
}

func loadFile(dir, p string, kind schema.Kind) (Entry, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", p, err)
	}
	raw, err := ParseFile(p, b)
	if err != nil {
		return Entry{}, fmt.Errorf("parse %s: %w", p, err)
	}
	data, err := schema.Validate(kind, raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Kind: kind, Slug: slugOf(dir, p), Path: p, Data: data}, nil
}

// slugOf 取相对集合目录的路径并去掉扩展名，如 blog/2024/hello.md -> 2024/hello。
func slugOf(dir, p string) string {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}

// LoadAll 依次加载三个集合。
func LoadAll(root string) ([]Report, error) {
	out := make([]Report, 0, len(schema.Kinds))
	for _, k := range schema.Kinds {
		rep, err := LoadCollection(root, k)
		if err != nil {
			return out, err
		}
		out = append(out, rep)
	}
	return out, nil
}

// Counts 汇总通过与失败的条数。
func Counts(reps []Report) (valid, invalid int) {
	for _, r := range reps {
		valid += len(r.Entries)
		invalid += len(r.Failures)
	}
	return valid, invalid
}
