// 包 model 定义站点数据模型：三类内容集合、表格导入的工具条目、分页标记与导出结构。
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// BlogPost 为 blog 集合的 front matter。
type BlogPost struct {
	Title      string   `json:"title" mapstructure:"title"`
	Excerpt    string   `json:"excerpt" mapstructure:"excerpt"`
	Image      string   `json:"image" mapstructure:"image"`
	ImageAlt   string   `json:"imageAlt" mapstructure:"imageAlt"`
	Category   string   `json:"category" mapstructure:"category"`
	Date       string   `json:"date" mapstructure:"date"`
	ReadTime   string   `json:"readTime" mapstructure:"readTime"`
	Featured   bool     `json:"featured" mapstructure:"featured"`
	Author     string   `json:"author" mapstructure:"author"`
	AuthorRole *string  `json:"authorRole,omitempty" mapstructure:"authorRole"`
	AuthorBio  *string  `json:"authorBio,omitempty" mapstructure:"authorBio"`
	TLDR       []string `json:"tldr,omitempty" mapstructure:"tldr"`
}

// CollectionTool 为 tools 集合的 front matter（手写的工具页，区别于表格导入的 Tool）。
type CollectionTool struct {
	Name        string   `json:"name" mapstructure:"name"`
	Description string   `json:"description" mapstructure:"description"`
	Link        string   `json:"link" mapstructure:"link" validate:"url"`
	Category    string   `json:"category" mapstructure:"category"`
	Tags        []string `json:"tags" mapstructure:"tags"`
	Image       *string  `json:"image,omitempty" mapstructure:"image"`
	Featured    bool     `json:"featured" mapstructure:"featured"`
}

// Author 为 authors 集合的 front matter。
type Author struct {
	Name     string  `json:"name" mapstructure:"name"`
	Role     string  `json:"role" mapstructure:"role"`
	Bio      string  `json:"bio" mapstructure:"bio"`
	Avatar   *string `json:"avatar,omitempty" mapstructure:"avatar"`
	Twitter  *string `json:"twitter,omitempty" mapstructure:"twitter"`
	LinkedIn *string `json:"linkedin,omitempty" mapstructure:"linkedin"`
}

// Tool 为从发布表格导入并归一化后的工具条目。
// Subcategory/Image 为 nil 表示表格中没有该列（或该行缺少该单元格）。
type Tool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Subcategory *string  `json:"subcategory,omitempty"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Image       *string  `json:"image,omitempty"`
	Pricing     string   `json:"pricing"`
	Rating      float64  `json:"rating"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	CreatedAt   string   `json:"createdAt"`
}

// Marker 为分页条中的一个位置：页码或省略号。
type Marker struct {
	Page     int
	Ellipsis bool
}

// EllipsisText 为省略号标记的展示文本。
const EllipsisText = "..."

// PageMarker 构造页码标记。
func PageMarker(n int) Marker { return Marker{Page: n} }

// EllipsisMarker 构造省略号标记。
func EllipsisMarker() Marker { return Marker{Ellipsis: true} }

func (m Marker) String() string {
	if m.Ellipsis {
		return EllipsisText
	}
	return strconv.Itoa(m.Page)
}

// MarshalJSON 页码输出为数字，省略号输出为 "..."。
func (m Marker) MarshalJSON() ([]byte, error) {
	if m.Ellipsis {
		return json.Marshal(EllipsisText)
	}
	return json.Marshal(m.Page)
}

// UnmarshalJSON 与 MarshalJSON 对称。
func (m *Marker) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != EllipsisText {
			return fmt.Errorf("invalid marker %q", s)
		}
		*m = EllipsisMarker()
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = PageMarker(n)
	return nil
}

// PageIndex 为列表某一页的分页条。
type PageIndex struct {
	Page    int      `json:"page"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
	Markers []Marker `json:"markers"`
}

// Stats 为一次构建的统计信息。
type Stats struct {
	ToolsTotal     int       `json:"tools_total"`
	ToolsFeatured  int       `json:"tools_featured"`
	ContentValid   int       `json:"content_valid"`
	ContentInvalid int       `json:"content_invalid"`
	Pages          int       `json:"pages"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// 工具数据来源。
const (
	SourceSheet    = "sheet"
	SourceSnapshot = "snapshot"
	SourceNone     = "none"
)

// ContentRef 为内容索引中的一条记录。
type ContentRef struct {
	Kind string `json:"kind"`
	Slug string `json:"slug"`
}

// Export 为导出的 data.json 顶层结构。
type Export struct {
	Stats   Stats        `json:"stats"`
	Source  string       `json:"source"`
	Tools   []Tool       `json:"tools"`
	Pages   []PageIndex  `json:"pages"`
	Content []ContentRef `json:"content"`
}
