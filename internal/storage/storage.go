package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("storage: document not found")

// DocumentStore 按 {collection}/{docID} 寻址的文档存储；SetDocument 为整篇覆盖
type DocumentStore interface {
	SetDocument(ctx context.Context, collection, docID string, fields map[string]any) error
	GetDocument(ctx context.Context, collection, docID string) (map[string]any, error)
	ListDocumentIDs(ctx context.Context, collection string, limit int) ([]string, error)
}

// Collection 描述一个公司对应的文档集合，例如 NEWS / NEWS_UMC
type Collection struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:64;uniqueIndex" json:"name"`
	Company string `gorm:"size:128" json:"company"`
	Ticker  string `gorm:"size:32" json:"ticker"`
	Status  string `gorm:"size:32;index" json:"status"` // active / disabled

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewsDocument 每个公司每天一行，Fields 为 news_N -> 文章字段
type NewsDocument struct {
	Collection string            `gorm:"primaryKey;size:64" json:"collection"`
	DocID      string            `gorm:"primaryKey;size:8" json:"docId"`
	Fields     datatypes.JSONMap `gorm:"type:jsonb" json:"fields"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

const docCacheTTL = 5 * time.Minute

// NewStore 连接 PostgreSQL 并迁移表结构；redisAddr 为空时不启用缓存
func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}

	if err := db.AutoMigrate(&Collection{}, &NewsDocument{}); err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}

	s := &Store{DB: db}
	if redisAddr == "" {
		return s, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}
	s.Redis = rdb
	return s, nil
}

// EnsureCollection 确保集合登记存在
func (s *Store) EnsureCollection(name, company, ticker string) (*Collection, error) {
	col := &Collection{}
	if err := s.DB.Where("name = ?", name).First(col).Error; err == nil {
		return col, nil
	}

	col = &Collection{
		Name:    name,
		Company: company,
		Ticker:  ticker,
		Status:  "active",
	}
	if err := s.DB.Create(col).Error; err != nil {
		return nil, err
	}
	return col, nil
}

func docCacheKey(collection, docID string) string {
	return fmt.Sprintf("news:doc:%s:%s", collection, docID)
}

// SetDocument 整篇覆盖写入：同一天再次写入时旧字段全部被替换，不做合并
func (s *Store) SetDocument(ctx context.Context, collection, docID string, fields map[string]any) error {
	doc := &NewsDocument{
		Collection: collection,
		DocID:      docID,
		Fields:     datatypes.JSONMap(fields),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("storage: set %s/%s: %w", collection, docID, err)
	}

	if s.Redis != nil {
		if err := s.Redis.Del(ctx, docCacheKey(collection, docID)).Err(); err != nil {
			log.Printf("warn: redis del %s/%s: %v", collection, docID, err)
		}
	}
	return nil
}

// GetDocument 读取文档，优先走 Redis 缓存
func (s *Store) GetDocument(ctx context.Context, collection, docID string) (map[string]any, error) {
	cacheKey := docCacheKey(collection, docID)
	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached map[string]any
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var doc NewsDocument
	err := s.DB.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, docID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	fields := map[string]any(doc.Fields)
	if s.Redis != nil {
		if bs, err := json.Marshal(fields); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, docCacheTTL).Err()
		}
	}
	return fields, nil
}

// ListDocumentIDs 返回集合内已有的日期（倒序）
func (s *Store) ListDocumentIDs(ctx context.Context, collection string, limit int) ([]string, error) {
	if limit <= 0 || limit > 365 {
		limit = 31
	}
	var ids []string
	err := s.DB.WithContext(ctx).Model(&NewsDocument{}).
		Where("collection = ?", collection).
		Order("doc_id DESC").
		Limit(limit).
		Pluck("doc_id", &ids).Error
	return ids, err
}
