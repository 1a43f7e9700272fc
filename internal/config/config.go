// 包 config 负责加载与校验构建配置（settings.yaml），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 为构建期配置。
type Config struct {
	Sheet        Sheet    `yaml:"SHEET"`
	SkipSheet    bool     `yaml:"SKIP_SHEET"`
	ContentDir   string   `yaml:"CONTENT_DIR"`
	PageSize     int      `yaml:"PAGE_SIZE"`
	SimpleMode   bool     `yaml:"SIMPLE_MODE"`
	ResetOnStart bool     `yaml:"RESET_ON_START"`
	Database     Database `yaml:"DATABASE"`
	Fetch        Fetch    `yaml:"FETCH"`
	Proxy        Proxy    `yaml:"PROXY"`
	LogLevel     string   `yaml:"LOG_LEVEL"`
	LogFormat    string   `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale    string   `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor     string   `yaml:"LOG_COLOR"`  // auto|always|never
}

// Sheet 描述发布到网络的工具表格。
type Sheet struct {
	URL    string `yaml:"url"`
	Format string `yaml:"format"` // csv|xlsx|html
	Name   string `yaml:"sheet"`  // xlsx 工作表名
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default)
	DSN  string `yaml:"dsn"`  // ./data.db
}

// Fetch：Timeout 单位为秒；Retry 默认 0，即只请求一次。
type Fetch struct {
	Timeout int `yaml:"timeout"`
	Retry   int `yaml:"retry"`
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// TimeoutDuration 返回抓取超时。
func (f Fetch) TimeoutDuration() time.Duration { return time.Duration(f.Timeout) * time.Second }

// Load 从文件读取 YAML 并反序列化为 Config，同时进行校验与默认值填充。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
func (c *Config) Validate() error {
	if c.PageSize < 0 {
		return errors.New("PAGE_SIZE must be >= 1")
	}
	if c.PageSize == 0 {
		c.PageSize = 12
	}
	if c.ContentDir == "" {
		c.ContentDir = "src/content"
	}
	c.Sheet.Format = strings.ToLower(strings.TrimSpace(c.Sheet.Format))
	switch c.Sheet.Format {
	case "":
		c.Sheet.Format = "csv"
	case "csv", "xlsx", "html":
	default:
		return fmt.Errorf("unsupported SHEET.format: %s", c.Sheet.Format)
	}
	if !c.SkipSheet {
		if c.Sheet.URL == "" {
			return errors.New("SHEET.url is required unless SKIP_SHEET is true")
		}
		u, err := url.Parse(c.Sheet.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SHEET.url is not an absolute url: %q", c.Sheet.URL)
		}
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./data.db"
	}
	if c.Fetch.Timeout < 0 {
		return errors.New("FETCH.timeout must be >= 0")
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30
	}
	if c.Fetch.Retry < 0 {
		c.Fetch.Retry = 0
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}
