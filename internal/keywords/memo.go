package keywords

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/talent-search/internal/logger"
	"github.com/jonathan/talent-search/internal/metrics"
	"github.com/jonathan/talent-search/internal/types"
)

// Key identifies a memoized extraction.
type Key string

// VacancyKey keys an extraction by vacancy id.
func VacancyKey(id string) Key {
	return Key("vacancy:" + id)
}

// TextKey keys an extraction by vacancy name and cleaned description text.
func TextKey(name, cleanedText string) Key {
	sum := sha256.Sum256([]byte(name + "\x00" + cleanedText))
	return Key("text:" + hex.EncodeToString(sum[:]))
}

// KeyFor picks VacancyKey when an id is known, TextKey otherwise.
func KeyFor(vacancyID, name, descriptionHTML string) Key {
	if vacancyID != "" {
		return VacancyKey(vacancyID)
	}
	return TextKey(name, DescriptionText(descriptionHTML))
}

// Store is an optional second-level cache shared across processes.
// Load reports found=false for a missing key.
type Store interface {
	Load(ctx context.Context, key string) (payload []byte, found bool, err error)
	Save(ctx context.Context, key string, payload []byte) error
}

// Memo memoizes extractions for the lifetime of the process. Concurrent
// requests for the same key share one extraction; failures are never cached.
type Memo struct {
	source Source
	store  Store
	logger *zap.Logger

	mu      sync.RWMutex
	current map[Key]types.KeywordSet
	legacy  map[Key]types.LegacyKeywordSet
	group   singleflight.Group
}

// NewMemo wraps source. store may be nil.
func NewMemo(source Source, store Store, log *zap.Logger) *Memo {
	return &Memo{
		source:  source,
		store:   store,
		logger:  logger.OrNop(log),
		current: make(map[Key]types.KeywordSet),
		legacy:  make(map[Key]types.LegacyKeywordSet),
	}
}

// Keywords returns the memoized {must_have, optional} set for key, extracting on a miss.
func (m *Memo) Keywords(ctx context.Context, key Key, name, descriptionHTML string) (*types.KeywordSet, error) {
	return lookup(ctx, m, currentStoreKey(key), key, m.current, func(ctx context.Context) (*types.KeywordSet, error) {
		return m.source.Extract(ctx, name, descriptionHTML)
	})
}

// LegacyKeywords returns the memoized four-role set for key, extracting on a miss.
func (m *Memo) LegacyKeywords(ctx context.Context, key Key, name, descriptionHTML string) (*types.LegacyKeywordSet, error) {
	return lookup(ctx, m, legacyStoreKey(key), key, m.legacy, func(ctx context.Context) (*types.LegacyKeywordSet, error) {
		return m.source.ExtractLegacy(ctx, name, descriptionHTML)
	})
}

// Deleter is implemented by stores that can drop an entry.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// StoreKeys returns the store keys of both keyword shapes memoized under key.
func StoreKeys(key Key) []string {
	return []string{currentStoreKey(key), legacyStoreKey(key)}
}

func currentStoreKey(key Key) string { return "keywords:" + string(key) }
func legacyStoreKey(key Key) string  { return "legacy:" + string(key) }

// Forget drops key from the in-process tables and, when the store supports
// it, from the store, so the next call re-extracts.
func (m *Memo) Forget(ctx context.Context, key Key) error {
	m.mu.Lock()
	delete(m.current, key)
	delete(m.legacy, key)
	m.mu.Unlock()

	d, ok := m.store.(Deleter)
	if !ok {
		return nil
	}
	for _, storeKey := range StoreKeys(key) {
		if err := d.Delete(ctx, storeKey); err != nil {
			return err
		}
	}
	return nil
}

// cloner is implemented by the memoized keyword shapes. Entries are cloned on
// the way in and on the way out so callers never share the cached slices.
type cloner[T any] interface {
	Clone() T
}

func lookup[T cloner[T]](ctx context.Context, m *Memo, storeKey string, key Key, table map[Key]T, extract func(context.Context) (*T, error)) (*T, error) {
	m.mu.RLock()
	cached, ok := table[key]
	m.mu.RUnlock()
	if ok {
		metrics.KeywordCacheTotal.WithLabelValues("hit").Inc()
		value := cached.Clone()
		return &value, nil
	}

	v, err, _ := m.group.Do(storeKey, func() (interface{}, error) {
		if value, ok := loadStored[T](ctx, m, storeKey); ok {
			metrics.KeywordCacheTotal.WithLabelValues("store_hit").Inc()
			remember(m, table, key, value)
			return value, nil
		}

		metrics.KeywordCacheTotal.WithLabelValues("miss").Inc()
		value, err := extract(ctx)
		if err != nil {
			return nil, err
		}
		remember(m, table, key, *value)
		saveStored(ctx, m, storeKey, value)
		return *value, nil
	})
	if err != nil {
		return nil, err
	}

	value := v.(T).Clone()
	return &value, nil
}

func remember[T cloner[T]](m *Memo, table map[Key]T, key Key, value T) {
	m.mu.Lock()
	table[key] = value.Clone()
	m.mu.Unlock()
}

func loadStored[T any](ctx context.Context, m *Memo, storeKey string) (T, bool) {
	var value T
	if m.store == nil {
		return value, false
	}
	payload, found, err := m.store.Load(ctx, storeKey)
	if err != nil {
		m.logger.Warn("keyword store load failed", zap.String("key", storeKey), zap.Error(err))
		return value, false
	}
	if !found {
		return value, false
	}
	if err := json.Unmarshal(payload, &value); err != nil {
		m.logger.Warn("keyword store payload unreadable", zap.String("key", storeKey), zap.Error(err))
		return value, false
	}
	return value, true
}

func saveStored[T any](ctx context.Context, m *Memo, storeKey string, value *T) {
	if m.store == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		m.logger.Warn("keyword store encode failed", zap.String("key", storeKey), zap.Error(err))
		return
	}
	if err := m.store.Save(ctx, storeKey, payload); err != nil {
		m.logger.Warn("keyword store save failed", zap.String("key", storeKey), zap.Error(err))
	}
}
