// 包 paginate 计算列表页的分页条：
// - 首页、末页固定显示
// - 超过 7 页时只显示当前页前后各一页，其余以省略号代替
// - 附带按页切分列表的辅助函数
package paginate

import (
	"errors"
	"fmt"

	"go-aidevdaily/internal/model"
)

// compactThreshold 总页数超过该值时进入紧凑模式（插入省略号）。
const compactThreshold = 7

// ErrInvalidArgument 表示页数或当前页越界。
var ErrInvalidArgument = errors.New("paginate: invalid argument")

// Markers 返回第 currentPage 页的分页条，页码从 1 开始。
func Markers(totalPages, currentPage int) ([]model.Marker, error) {
	if totalPages < 1 {
		return nil, fmt.Errorf("%w: totalPages=%d must be >= 1", ErrInvalidArgument, totalPages)
	}
	if currentPage < 1 || currentPage > totalPages {
		return nil, fmt.Errorf("%w: currentPage=%d out of [1,%d]", ErrInvalidArgument, currentPage, totalPages)
	}

	out := make([]model.Marker, 0, 9)
	out = append(out, model.PageMarker(1))

	if totalPages > compactThreshold {
		if currentPage > 3 {
			out = append(out, model.EllipsisMarker())
		}
		start := max(2, currentPage-1)
		end := min(totalPages-1, currentPage+1)
		for i := start; i <= end; i++ {
			out = append(out, model.PageMarker(i))
		}
		if currentPage < totalPages-2 {
			out = append(out, model.EllipsisMarker())
		}
	} else {
		for i := 2; i < totalPages; i++ {
			out = append(out, model.PageMarker(i))
		}
	}

	if totalPages > 1 {
		out = append(out, model.PageMarker(totalPages))
	}
	return out, nil
}

// TotalPages 计算 items 条记录按 pageSize 分页后的页数；空列表也算 1 页。
func TotalPages(items, pageSize int) int {
	if pageSize <= 0 || items <= 0 {
		return 1
	}
	return (items + pageSize - 1) / pageSize
}

// Window 返回第 page 页在列表中的切片区间 [start, end)。
func Window(items, pageSize, page int) (int, int, error) {
	total := TotalPages(items, pageSize)
	if pageSize <= 0 {
		return 0, 0, fmt.Errorf("%w: pageSize=%d must be >= 1", ErrInvalidArgument, pageSize)
	}
	if page < 1 || page > total {
		return 0, 0, fmt.Errorf("%w: page=%d out of [1,%d]", ErrInvalidArgument, page, total)
	}
	start := (page - 1) * pageSize
	end := min(items, start+pageSize)
	if start > end {
		start = end
	}
	return start, end, nil
}

// Index 为列表的每一页生成区间与分页条。
func Index(items, pageSize int) ([]model.PageIndex, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: pageSize=%d must be >= 1", ErrInvalidArgument, pageSize)
	}
	total := TotalPages(items, pageSize)
	out := make([]model.PageIndex, 0, total)
	for p := 1; p <= total; p++ {
		start, end, err := Window(items, pageSize, p)
		if err != nil {
			return nil, err
		}
		ms, err := Markers(total, p)
		if err != nil {
			return nil, err
		}
		out = append(out, model.PageIndex{Page: p, Start: start, End: end, Markers: ms})
	}
	return out, nil
}

// Format 以逗号拼接分页条，便于命令行调试输出。
func Format(ms []model.Marker) string {
	b := make([]byte, 0, len(ms)*3)
	for i, m := range ms {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, m.String()...)
	}
	return string(b)
}
