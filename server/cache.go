package server

import (
	"fmt"

	"github.com/YuminosukeSato/electrospin/pkg/log"
	"github.com/YuminosukeSato/electrospin/surface"
	lru "github.com/hashicorp/golang-lru/v2"
)

// modelID formats a dataset fingerprint as a cache key.
func modelID(fingerprint uint64) string {
	return fmt.Sprintf("%016x", fingerprint)
}

// modelCache keeps fitted surface models by id. When full, the least
// recently used model is evicted.
type modelCache struct {
	models *lru.Cache[string, *surface.Model]
}

func newModelCache(capacity int, logger log.Logger) *modelCache {
	if capacity < 1 {
		capacity = 1
	}
	models, err := lru.NewWithEvict(capacity, func(id string, _ *surface.Model) {
		logger.Debug("model evicted", log.ModelIDKey, id)
	})
	if err != nil {
		// lru はサイズが正なら失敗しない
		panic(err)
	}
	return &modelCache{models: models}
}

func (c *modelCache) Get(id string) (*surface.Model, bool) {
	return c.models.Get(id)
}

// Put stores m under id and reports whether another model was evicted.
func (c *modelCache) Put(id string, m *surface.Model) (evicted bool) {
	return c.models.Add(id, m)
}

func (c *modelCache) Len() int {
	return c.models.Len()
}
