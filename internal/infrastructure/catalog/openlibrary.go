// Package catalog 外部书目查询(OpenLibrary)
// 只在登记新书时用来补全元数据,查询失败不影响登记
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xiebiao/circulation/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/circulation/pkg/errors"
	"github.com/xiebiao/circulation/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMetadataNotFound 目录中没有该ISBN
var ErrMetadataNotFound = apperrors.New(apperrors.ErrCodeMetadataNotFound, "外部目录中查不到该ISBN")

// DefaultCategory 无法归类时的分类
const DefaultCategory = "other"

// subject(小写) → 馆内分类
var categoryBySubject = map[string]string{
	"fiction":                       "novel",
	"novel":                         "novel",
	"detective and mystery stories": "novel",
	"police procedural":             "thriller",
	"thrillers":                     "thriller",
	"science fiction":               "science_fiction",
	"fantasy":                       "fantasy",
	"horror":                        "horror",
	"romance":                       "romance",
	"historical fiction":            "historical_novel",
	"history":                       "history",
	"biography":                     "biography",
	"short stories":                 "short_story",
	"poetry":                        "poetry",
	"drama":                         "drama",
	"comedies":                      "comedy",
	"juvenile fiction":              "juvenile",
	"young adult fiction":           "juvenile",
	"graphic novels":                "comics",
	"comics":                        "comics",
	"philosophy":                    "philosophy",
	"essays":                        "essay",
	"true crime":                    "crime",
	"crime fiction":                 "crime",
	"satire":                        "satire",
	"political satire":              "satire",
	"classic fiction":               "classic",
	"classic literature":            "classic",
	"magical realism":               "magical_realism",
}

// Metadata 书目元数据
type Metadata struct {
	ISBN          string `json:"isbn"`
	Name          string `json:"name"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	Description   string `json:"description"`
	CoverURL      string `json:"cover_url"`
	Category      string `json:"category"`
}

// Client OpenLibrary客户端
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient baseURL形如https://openlibrary.org
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: circuitbreaker.New("catalog", circuitbreaker.Config{
			Timeout: time.Minute,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrMetadataNotFound)
			},
		}),
		logger: logger,
	}
}

// /api/books?jscmd=data 的响应片段
type bookData struct {
	Key         string              `json:"key"`
	Title       string              `json:"title"`
	PublishDate string              `json:"publish_date"`
	Authors     []named             `json:"authors"`
	Publishers  []named             `json:"publishers"`
	Subjects    []named             `json:"subjects"`
	Description jsoniter.RawMessage `json:"description"`
	Cover       struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
	} `json:"cover"`
}

type named struct {
	Name string `json:"name"`
}

// FetchByISBN 查询ISBN对应的元数据
func (c *Client) FetchByISBN(ctx context.Context, isbn string) (*Metadata, error) {
	var meta *Metadata
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		meta, err = c.fetch(ctx, isbn)
		return err
	})

	switch {
	case err == nil:
		metrics.IncCounterVec(metrics.CatalogLookupsTotal, "found")
		return meta, nil
	case errors.Is(err, ErrMetadataNotFound):
		metrics.IncCounterVec(metrics.CatalogLookupsTotal, "not_found")
		return nil, err
	default:
		metrics.IncCounterVec(metrics.CatalogLookupsTotal, "error")
		c.logger.Warn("查询外部目录失败", zap.String("isbn", isbn), zap.Error(err))
		return nil, apperrors.Wrap(err, "查询外部目录失败")
	}
}

func (c *Client) fetch(ctx context.Context, isbn string) (*Metadata, error) {
	bibkey := "ISBN:" + isbn
	q := url.Values{}
	q.Set("bibkeys", bibkey)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/books?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("openlibrary返回状态码%d", resp.StatusCode)
	}

	var payload map[string]bookData
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("解析openlibrary响应失败: %w", err)
	}

	book, ok := payload[bibkey]
	if !ok {
		return nil, ErrMetadataNotFound
	}
	return toMetadata(isbn, &book), nil
}

func toMetadata(isbn string, b *bookData) *Metadata {
	cover := b.Cover.Large
	if cover == "" {
		cover = b.Cover.Medium
	}
	subjects := make([]string, len(b.Subjects))
	for i, s := range b.Subjects {
		subjects[i] = s.Name
	}
	return &Metadata{
		ISBN:          isbn,
		Name:          b.Title,
		Author:        joinNames(b.Authors),
		Publisher:     joinNames(b.Publishers),
		PublishedDate: b.PublishDate,
		Description:   description(b.Description),
		CoverURL:      cover,
		Category:      MapCategory(subjects),
	}
}

// MapCategory 取第一个能识别的subject
func MapCategory(subjects []string) string {
	for _, s := range subjects {
		if c, ok := categoryBySubject[strings.ToLower(strings.TrimSpace(s))]; ok {
			return c
		}
	}
	return DefaultCategory
}

func joinNames(items []named) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return strings.Join(names, ", ")
}

// description 可能是字符串,也可能是{"type":..., "value":...}
func description(raw jsoniter.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}
