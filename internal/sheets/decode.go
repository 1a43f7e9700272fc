package sheets

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"
)

// Row 为一行数据：列名 -> 单元格文本。行内缺少的单元格不出现在 map 中。
type Row map[string]string

// Get 返回单元格文本及其是否存在。
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

var bom = []byte("\xef\xbb\xbf")

// DecodeCSV 以首行为表头解析 CSV；跳过空行，容忍列数不齐与不规范引号。
func DecodeCSV(body []byte) ([]Row, error) {
	rd := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(body, bom)))
	rd.FieldsPerRecord = -1
	rd.LazyQuotes = true
	var header []string
	var rows []Row
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", ErrDecode, err)
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, zipRow(header, rec))
	}
	if header == nil {
		return nil, fmt.Errorf("%w: csv: missing header row", ErrDecode)
	}
	return rows, nil
}

// DecodeXLSX 读取 xlsx 工作簿（默认第一个工作表），首行为表头，跳过全空行。
func DecodeXLSX(body []byte, sheet string) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrDecode, err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	recs, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx sheet %q: %v", ErrDecode, sheet, err)
	}
	var header []string
	var rows []Row
	for _, rec := range recs {
		if blank(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, zipRow(header, rec))
	}
	if header == nil {
		return nil, fmt.Errorf("%w: xlsx: missing header row", ErrDecode)
	}
	return rows, nil
}

// DecodeHTML 解析"发布到网络"的 HTML 页面中的第一个表格。
// 谷歌表格的版式为：首行列标（空, A, B, ...），之后每行以行号 th 开头；识别到该版式时去掉行号列。
// 普通表格则以第一个非空行为表头。单元格文本保持原样，与 CSV 一致。
func DecodeHTML(body []byte) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: html: %v", ErrDecode, err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: html: no table", ErrDecode)
	}
	var header []string
	rowNumbers := false
	var rows []Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Children().Filter("td,th")
		rec := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			rec = append(rec, c.Text())
		})
		if header == nil && isColumnLetters(rec) {
			rowNumbers = true
			return
		}
		if rowNumbers && len(rec) > 0 && cells.First().Is("th") {
			rec = rec[1:]
		}
		if blank(rec) {
			return
		}
		if header == nil {
			header = rec
			return
		}
		rows = append(rows, zipRow(header, rec))
	})
	if header == nil {
		return nil, fmt.Errorf("%w: html: missing header row", ErrDecode)
	}
	return rows, nil
}

// isColumnLetters 判断一行是否为谷歌表格的列标行：["", "A", "B", ...]。
func isColumnLetters(rec []string) bool {
	if len(rec) < 2 || rec[0] != "" {
		return false
	}
	for i, v := range rec[1:] {
		if v != columnName(i) {
			return false
		}
	}
	return true
}

// columnName 返回第 i 列（从 0 开始）的列标：A..Z, AA..。
func columnName(i int) string {
	name := ""
	for i++; i > 0; i = (i - 1) / 26 {
		name = string(rune('A'+(i-1)%26)) + name
	}
	return name
}

func zipRow(header, rec []string) Row {
	r := make(Row, len(header))
	for i, h := range header {
		if i >= len(rec) {
			break
		}
		// 重名表头保留第一个
		if _, dup := r[h]; dup {
			continue
		}
		r[h] = rec[i]
	}
	return r
}

func blank(rec []string) bool {
	for _, v := range rec {
		if v != "" {
			return false
		}
	}
	return true
}
