package sheets

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go-aidevdaily/internal/logx"
	"go-aidevdaily/internal/model"
)

// 表格中识别的列名，其余列忽略。
const (
	ColID          = "id"
	ColName        = "name"
	ColCategory    = "category"
	ColSubcategory = "subcategory"
	ColDescription = "description"
	ColWebsite     = "website"
	ColImageURL    = "image_url"
	ColPricing     = "pricing"
	ColRating      = "rating"
	ColTags        = "tags"
	ColFeatured    = "featured"
	ColCreatedAt   = "created_at"
)

var (
	// 空白：\s 之外还包括 \v、全部 Z 类（含 U+2028/U+2029）与 BOM
	reSpaces = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	// 只取开头能解析的数字部分
	reLeadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// MapRows 逐行映射，保持源顺序；不去重，不丢行。
func MapRows(rows []Row) []model.Tool {
	out := make([]model.Tool, 0, len(rows))
	for i, r := range rows {
		t := MapRow(r)
		if t.ID == "" {
			// 行号从 2 开始计（第 1 行为表头）
			logx.Warnf("表格第 %d 行缺少 id 与 name，保留为空 id", i+2)
		}
		out = append(out, t)
	}
	return out
}

// MapRow 把一行表格数据归一化为 Tool，只依赖本行内容。
func MapRow(r Row) model.Tool {
	name := r[ColName]
	t := model.Tool{
		ID:          DeriveID(r[ColID], name),
		Name:        name,
		Category:    r[ColCategory],
		Subcategory: optional(r, ColSubcategory),
		Description: r[ColDescription],
		Link:        r[ColWebsite],
		Image:       optional(r, ColImageURL),
		Pricing:     r[ColPricing],
		Rating:      ParseRating(r[ColRating]),
		Tags:        SplitTags(r[ColTags]),
		Featured:    strings.ToLower(r[ColFeatured]) == "true",
		CreatedAt:   r[ColCreatedAt],
	}
	return t
}

// DeriveID 优先使用显式 id；否则由 name 转小写并把连续空白替换为 "-"（不做 trim）。
func DeriveID(id, name string) string {
	if id != "" {
		return id
	}
	if name == "" {
		return ""
	}
	return reSpaces.ReplaceAllString(strings.ToLower(name), "-")
}

// ParseRating 解析评分文本开头的数字；无法解析、NaN 或无穷大时返回 0。
func ParseRating(s string) float64 {
	s = strings.TrimLeftFunc(s, isLeadingSpace)
	m := reLeadingFloat.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// SplitTags 以逗号切分并去掉每项首尾空白；空串返回空切片（非 nil）。
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func optional(r Row, col string) *string {
	v, ok := r.Get(col)
	if !ok {
		return nil
	}
	return &v
}

// isLeadingSpace 判断评分前导空白：不含 U+0085，含 BOM。
func isLeadingSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}
