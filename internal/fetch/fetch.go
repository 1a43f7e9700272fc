// 包 fetch 封装构建期使用的 HTTP 客户端（代理/超时/可选重试），用于抓取发布的表格。
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultMaxBody 为单次响应体读取上限。
const DefaultMaxBody = 16 << 20

// defaultUA 可被环境变量 AIDD_UA 覆盖。
const defaultUA = "go-aidevdaily/1.0 (+https://aidevdaily.com)"

// Client 为构建期 HTTP 客户端。
type Client struct {
	http    *http.Client
	retry   int
	maxBody int64
}

// Options 为客户端构造参数。Retry 为 0 时只请求一次。
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	Retry      int
	MaxBody    int64
}

// StatusError 表示服务端返回了非 2xx 状态码。
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: http status: %s", e.URL, e.Status)
}

// New 创建客户端，支持 http/https 代理与超时。
func New(opts Options) (*Client, error) {
	var proxyHTTP, proxyHTTPS *url.URL
	var err error
	if opts.ProxyHTTP != "" {
		if proxyHTTP, err = url.Parse(opts.ProxyHTTP); err != nil {
			return nil, fmt.Errorf("parse http proxy: %w", err)
		}
	}
	if opts.ProxyHTTPS != "" {
		if proxyHTTPS, err = url.Parse(opts.ProxyHTTPS); err != nil {
			return nil, fmt.Errorf("parse https proxy: %w", err)
		}
	}
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && proxyHTTPS != nil {
				return proxyHTTPS, nil
			}
			if req.URL.Scheme == "http" && proxyHTTP != nil {
				return proxyHTTP, nil
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry < 0 {
		opts.Retry = 0
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = DefaultMaxBody
	}
	cl := &http.Client{Transport: transport, Timeout: opts.Timeout}
	return &Client{http: cl, retry: opts.Retry, maxBody: opts.MaxBody}, nil
}

// Get 发起 GET 请求；非 2xx 视为失败，按 Retry 次数线性回退重试。
// 成功时调用方负责关闭 resp.Body。
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	attempts := c.retry + 1
	for i := 0; i < attempts; i++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return nil, fmt.Errorf("new request: %w", reqErr)
		}
		ua := os.Getenv("AIDD_UA")
		if ua == "" {
			ua = defaultUA
		}
		req.Header.Set("User-Agent", ua)
		resp, err := c.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			lastErr = &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
			if resp.Body != nil {
				resp.Body.Close()
			}
		} else {
			lastErr = err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 300 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// GetBytes 请求并读取完整响应体（受 MaxBody 限制），同时返回 Content-Type。
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body %s: %w", url, err)
	}
	if int64(len(b)) > c.maxBody {
		return nil, "", fmt.Errorf("read body %s: %w", url, ErrBodyTooLarge)
	}
	return b, resp.Header.Get("Content-Type"), nil
}

// ErrBodyTooLarge 表示响应体超过 MaxBody。
var ErrBodyTooLarge = errors.New("response body too large")

// 备注：发布表格偶尔返回 403 时，可设置环境变量 AIDD_UA 覆盖 UA。
