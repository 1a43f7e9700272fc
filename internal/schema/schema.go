// 包 schema 定义 blog/tools/authors 三个内容集合的 front matter 约束：
// - 字段表描述必填、类型与默认值，逐字段检查原始 map
// - 通过检查后用 mapstructure 解码为 model 中的强类型结构
// - 最后用 validator 标签做格式细化（如 url）
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"go-aidevdaily/internal/model"
)

// Kind 为内容集合名称。
type Kind string

const (
	KindBlog    Kind = "blog"
	KindTools   Kind = "tools"
	KindAuthors Kind = "authors"
)

// Kinds 按固定顺序列出全部集合。
var Kinds = []Kind{KindBlog, KindTools, KindAuthors}

// ParseKind 解析集合名（不区分大小写）。
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Kinds {
		if v == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// FieldType 为字段声明的类型。
type FieldType int

const (
	String FieldType = iota
	Bool
	StringList
)

func (t FieldType) String() string {
	switch t {
	case Bool:
		return "boolean"
	case StringList:
		return "array"
	default:
		return "string"
	}
}

// Field 描述一个 front matter 字段。Default 非 nil 时缺省即取默认值。
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Default  any
}

// Collection 为一个集合的字段表与目标类型。
type Collection struct {
	Kind   Kind
	Fields []Field
	newFn  func() any
}

var collections = map[Kind]Collection{
	KindBlog: {
		Kind: KindBlog,
		Fields: []Field{
			{Name: "title", Type: String, Required: true},
			{Name: "excerpt", Type: String, Required: true},
			{Name: "image", Type: String, Required: true},
			{Name: "imageAlt", Type: String, Required: true},
			{Name: "category", Type: String, Required: true},
			{Name: "date", Type: String, Required: true},
			{Name: "readTime", Type: String, Required: true},
			{Name: "featured", Type: Bool, Required: true},
			{Name: "author", Type: String, Required: true},
			{Name: "authorRole", Type: String},
			{Name: "authorBio", Type: String},
			{Name: "tldr", Type: StringList},
		},
		newFn: func() any { return &model.BlogPost{} },
	},
	KindTools: {
		Kind: KindTools,
		Fields: []Field{
			{Name: "name", Type: String, Required: true},
			{Name: "description", Type: String, Required: true},
			{Name: "link", Type: String, Required: true},
			{Name: "category", Type: String, Required: true},
			{Name: "tags", Type: StringList, Required: true},
			{Name: "image", Type: String},
			{Name: "featured", Type: Bool, Default: false},
		},
		newFn: func() any { return &model.CollectionTool{} },
	},
	KindAuthors: {
		Kind: KindAuthors,
		Fields: []Field{
			{Name: "name", Type: String, Required: true},
			{Name: "role", Type: String, Required: true},
			{Name: "bio", Type: String, Required: true},
			{Name: "avatar", Type: String},
			{Name: "twitter", Type: String},
			{Name: "linkedin", Type: String},
		},
		newFn: func() any { return &model.Author{} },
	},
}

// Lookup 返回集合定义。
func Lookup(k Kind) (Collection, bool) {
	c, ok := collections[k]
	return c, ok
}

// Validate 校验一条原始记录并返回强类型结果（*model.BlogPost / *model.CollectionTool / *model.Author）。
// 校验失败时返回 *ValidationError，列出该记录的全部违规字段。
func Validate(k Kind, raw map[string]any) (any, error) {
	c, ok := Lookup(k)
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", k)
	}
	return c.Validate(raw)
}

// Validate 按字段表检查、填充默认值、解码并做格式细化。
func (c Collection) Validate(raw map[string]any) (any, error) {
	var vs []Violation
	in := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		v, present := raw[f.Name]
		if !present {
			switch {
			case f.Default != nil:
				in[f.Name] = f.Default
			case f.Required:
				vs = append(vs, Violation{Field: f.Name, Constraint: ConstraintRequired})
			}
			continue
		}
		if v == nil && f.Required {
			vs = append(vs, Violation{Field: f.Name, Constraint: ConstraintRequired})
			continue
		}
		if bad := checkType(f, v); len(bad) > 0 {
			vs = append(vs, bad...)
			continue
		}
		in[f.Name] = v
	}
	if len(vs) > 0 {
		return nil, &ValidationError{Kind: c.Kind, Violations: vs}
	}

	out := c.newFn()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		ZeroFields: true,
	})
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", c.Kind, err)
	}

	if vs := refine(out); len(vs) > 0 {
		return nil, &ValidationError{Kind: c.Kind, Violations: vs}
	}
	return out, nil
}

// checkType 检查字段值与声明类型是否一致。YAML 中的 null 视为类型不符。
func checkType(f Field, v any) []Violation {
	expect := func(name string) Violation {
		return Violation{Field: name, Constraint: "expected " + f.Type.String(), Got: typeName(v)}
	}
	switch f.Type {
	case String:
		if _, ok := v.(string); !ok {
			return []Violation{expect(f.Name)}
		}
	case Bool:
		if _, ok := v.(bool); !ok {
			return []Violation{expect(f.Name)}
		}
	case StringList:
		if _, ok := v.([]string); ok {
			return nil
		}
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return []Violation{expect(f.Name)}
		}
		var out []Violation
		for i := 0; i < rv.Len(); i++ {
			el := rv.Index(i).Interface()
			if _, ok := el.(string); !ok {
				out = append(out, Violation{
					Field:      fmt.Sprintf("%s[%d]", f.Name, i),
					Constraint: "expected string",
					Got:        typeName(el),
				})
			}
		}
		return out
	}
	return nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case map[string]any, map[any]any:
		return "object"
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return "array"
	}
	return rv.Kind().String()
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// 违规字段使用 front matter 键名而非 Go 字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// refine 运行结构体上的 validate 标签。
func refine(v any) []Violation {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []Violation{{Field: "", Constraint: err.Error()}}
	}
	out := make([]Violation, 0, len(ves))
	for _, fe := range ves {
		out = append(out, Violation{
			Field:      fe.Field(),
			Constraint: constraintText(fe.Tag()),
			Got:        fmt.Sprint(fe.Value()),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func constraintText(tag string) string {
	switch tag {
	case "url":
		return ConstraintURL
	default:
		return tag
	}
}
