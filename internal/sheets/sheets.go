// 包 sheets 从发布到网络的表格导入工具列表：
// - Fetch 抓取并解码（csv/xlsx/html），逐行映射为 model.Tool
// - 传输失败返回 ErrTransport，与"表格为空"区分开
// - FetchOrEmpty 保留旧行为：失败时记录日志并返回空列表
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-aidevdaily/internal/fetch"
	"go-aidevdaily/internal/logx"
	"go-aidevdaily/internal/model"
)

// Format 为发布表格的导出格式。
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// ParseFormat 解析格式名，空串视为 csv。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported sheet format %q", s)
	}
}

// Source 描述一个发布表格。
type Source struct {
	URL    string
	Format Format
	Sheet  string // 仅 xlsx：工作表名，空则取第一个
}

var (
	// ErrTransport 表示抓取失败（网络错误或非 2xx）。
	ErrTransport = errors.New("sheet transport failure")
	// ErrDecode 表示文档结构无法解析（如无表头、xlsx 损坏）。
	ErrDecode = errors.New("sheet decode failure")
)

// TransportError 携带抓取失败的原因。
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Getter 为抓取所需的最小接口，*fetch.Client 满足该接口。
type Getter interface {
	GetBytes(ctx context.Context, url string) ([]byte, string, error)
}

var _ Getter = (*fetch.Client)(nil)

// Fetch 抓取表格并返回按源顺序映射后的工具列表。
// 成功但没有数据行时返回空切片与 nil 错误。
func Fetch(ctx context.Context, g Getter, src Source) ([]model.Tool, error) {
	if src.URL == "" {
		return nil, &TransportError{URL: src.URL, Err: errors.New("empty sheet url")}
	}
	body, _, err := g.GetBytes(ctx, src.URL)
	if err != nil {
		return nil, &TransportError{URL: src.URL, Err: err}
	}
	rows, err := Decode(src.Format, body, src.Sheet)
	if err != nil {
		return nil, err
	}
	return MapRows(rows), nil
}

// FetchOrEmpty 失败时记录日志并返回空列表（非 nil），调用方无法区分失败与空表。
func FetchOrEmpty(ctx context.Context, g Getter, src Source) []model.Tool {
	tools, err := Fetch(ctx, g, src)
	if err != nil {
		logx.Errorf("从表格获取工具失败：%v", err)
		return []model.Tool{}
	}
	return tools
}

// Decode 按格式把文档解码为以表头为键的行。
func Decode(f Format, body []byte, sheet string) ([]Row, error) {
	switch f {
	case FormatCSV, "":
		return DecodeCSV(body)
	case FormatXLSX:
		return DecodeXLSX(body, sheet)
	case FormatHTML:
		return DecodeHTML(body)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrDecode, f)
	}
}
