// 包 logx 是对标准库 slog 的薄封装：
// - 支持级别/格式/语言/颜色配置，输出目标可替换（默认 stdout）
// - 提供 pretty 输出（[信息]/[INFO] 等标签）
// - 通过 Debugf/Infof/Warnf/Errorf 与 With 暴露，业务代码不直接依赖 slog 的 Handler
package logx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Options 为日志初始化参数，字段与 settings.yaml 中的 LOG_* 对应。
type Options struct {
	Level  string    // debug|info|warn|error|off
	Format string    // pretty|json|text
	Locale string    // zh-CN|en
	Color  string    // auto|always|never
	Writer io.Writer // 为空时使用 os.Stdout
}

// levelOff 高于所有级别，用于静默输出。
const levelOff slog.Level = 100

// Init 根据 Options 初始化全局日志器。
func Init(o Options) {
	w := o.Writer
	if w == nil {
		w = os.Stdout
	}
	lv := parseLevel(o.Level)
	opts := &slog.HandlerOptions{Level: lv}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(o.Format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = NewPrettyHandler(w, lv, o.Locale, o.Color)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none", "silent", "off":
		return levelOff
	default:
		return slog.LevelInfo
	}
}

// 便捷函数：格式化并按级别输出
func Debugf(format string, v ...any) { slog.Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...any)  { slog.Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...any)  { slog.Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...any) { slog.Error(fmt.Sprintf(format, v...)) }

// With 返回附带固定属性的 logger，例如 logx.With("component", "sheets")。
func With(args ...any) *slog.Logger { return slog.Default().With(args...) }

// PrettyHandler 面向人读的单行输出：时间 等级 消息 k=v...
type PrettyHandler struct {
	w      io.Writer
	level  slog.Level
	locale string
	color  bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	group  string
}

// NewPrettyHandler 创建 pretty Handler。
func NewPrettyHandler(w io.Writer, lv slog.Level, locale string, colorMode string) *PrettyHandler {
	if w == nil {
		w = os.Stdout
	}
	if locale == "" {
		locale = "zh-CN"
	}
	return &PrettyHandler{w: w, level: lv, locale: locale, color: shouldColor(w, colorMode), mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.level < levelOff && l >= h.level
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(ts.Format("2006-01-02 15:04:05"))
	buf.WriteByte(' ')
	lvl := levelLabel(h.locale, r.Level)
	if h.color {
		lvl = colorize(lvl, r.Level)
	}
	buf.WriteString(lvl)
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		attrs = append(attrs, a)
		return true
	})
	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Key)
		buf.WriteByte('=')
		buf.WriteString(a.Value.String())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	cp.attrs = append(cp.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		cp.attrs = append(cp.attrs, a)
	}
	return &cp
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	if cp.group == "" {
		cp.group = name
	} else {
		cp.group += "." + name
	}
	return &cp
}

var labels = map[bool]map[slog.Level]string{
	true: {
		slog.LevelDebug: "[调试]",
		slog.LevelInfo:  "[信息]",
		slog.LevelWarn:  "[警告]",
		slog.LevelError: "[错误]",
	},
	false: {
		slog.LevelDebug: "[DEBUG]",
		slog.LevelInfo:  "[INFO]",
		slog.LevelWarn:  "[WARN]",
		slog.LevelError: "[ERROR]",
	},
}

func levelLabel(locale string, l slog.Level) string {
	zh := strings.HasPrefix(strings.ToLower(locale), "zh")
	if s, ok := labels[zh][l]; ok {
		return s
	}
	return fmt.Sprintf("[L%d]", l)
}

// shouldColor 遵循 LOG_COLOR 与 NO_COLOR；auto 时仅在终端上启用。
func shouldColor(w io.Writer, mode string) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "auto", "":
		if f, ok := w.(*os.File); ok {
			if fi, err := f.Stat(); err == nil {
				return fi.Mode()&os.ModeCharDevice != 0
			}
		}
	}
	return false
}

func colorize(s string, l slog.Level) string {
	code := "0"
	switch l {
	case slog.LevelDebug:
		code = "90"
	case slog.LevelInfo:
		code = "36"
	case slog.LevelWarn:
		code = "33"
	case slog.LevelError:
		code = "31"
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
