package build

import (
	"sort"
	"sync"

	"go-aidevdaily/internal/content"
	"go-aidevdaily/internal/model"
)

// Buffer 收集一轮构建的内存结果；内容加载与表格抓取并发写入。
type Buffer struct {
	mu      sync.Mutex
	source  string
	tools   []model.Tool
	reports map[string]content.Report // key: kind
}

func NewBuffer() *Buffer {
	return &Buffer{source: model.SourceNone, tools: []model.Tool{}, reports: make(map[string]content.Report)}
}

// SetTools 整体替换工具列表及其来源，保持顺序。
func (b *Buffer) SetTools(source string, tools []model.Tool) {
	if tools == nil {
		tools = []model.Tool{}
	}
	b.mu.Lock()
	b.source = source
	b.tools = tools
	b.mu.Unlock()
}

func (b *Buffer) AddReport(r content.Report) {
	b.mu.Lock()
	b.reports[string(r.Kind)] = r
	b.mu.Unlock()
}

// Snapshot 返回副本：工具保持源顺序，内容报告按集合名排序。
func (b *Buffer) Snapshot() (string, []model.Tool, []content.Report) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tools := make([]model.Tool, len(b.tools))
	copy(tools, b.tools)
	reps := make([]content.Report, 0, len(b.reports))
	for _, r := range b.reports {
		reps = append(reps, r)
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i].Kind < reps[j].Kind })
	return b.source, tools, reps
}
