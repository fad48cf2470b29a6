// Package shard implements the sharded-merge coordinator spec.md §5
// describes for a parallel implementation: "a parallel implementation
// would shard by input line ranges and merge stores at the end via
// per-tag summation." Each shard worker runs an independent Driver over
// its own line range and flushes its local Example Store here; Merge
// reads every shard back and folds them into one Store with the exact
// count-sum / example-union / location-concat-with-cap rule the core
// uses internally (store.Merge).
package shard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/registry"
	"github.com/wildebeest-nlp/wildebeest/internal/analyzer/store"
)

const keyTTL = 24 * time.Hour

// Coordinator flushes and merges per-run shard state through a Redis
// hash keyed by run ID, one hash field per shard ID.
type Coordinator struct {
	client *redis.Client
	prefix string
}

// New wraps an already-connected Redis client. prefix namespaces this
// run's keys, e.g. "wildebeest:shard:".
func New(client *redis.Client, prefix string) *Coordinator {
	if prefix == "" {
		prefix = "wildebeest:shard:"
	}
	return &Coordinator{client: client, prefix: prefix}
}

// categoryWire is the JSON-serializable form of one store.Category,
// since store.Category's example map and insertion order are private.
type categoryWire struct {
	Tag          registry.Tag
	Description  string
	Count        uint64
	ExamplesFull bool
	Examples     []*store.Example
}

// Flush serializes s's noted categories and writes them to this run's
// Redis hash under shardID, so Merge can later read them back.
func (c *Coordinator) Flush(ctx context.Context, runID, shardID string, s *store.Store) error {
	var wire []categoryWire
	for _, tag := range registry.All() {
		cat := s.Category(tag)
		if cat == nil {
			continue
		}
		wire = append(wire, categoryWire{
			Tag:          tag,
			Description:  cat.Description,
			Count:        cat.Count,
			ExamplesFull: cat.ExamplesFull,
			Examples:     cat.Examples(),
		})
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("marshaling shard %s: %w", shardID, err)
	}

	key := c.runKey(runID)
	if err := c.client.HSet(ctx, key, shardID, payload).Err(); err != nil {
		return fmt.Errorf("flushing shard %s for run %s: %w", shardID, runID, err)
	}
	return c.client.Expire(ctx, key, keyTTL).Err()
}

// Merge reads every shard flushed for runID and folds them into a fresh
// Store bounded by maxExamples/maxLocations, the same caps a
// single-process run would apply.
func (c *Coordinator) Merge(ctx context.Context, runID string, maxExamples, maxLocations int) (*store.Store, error) {
	key := c.runKey(runID)
	shards, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("reading shards for run %s: %w", runID, err)
	}

	merged := store.New(maxExamples, maxLocations)
	for shardID, payload := range shards {
		var wire []categoryWire
		if err := json.Unmarshal([]byte(payload), &wire); err != nil {
			return nil, fmt.Errorf("unmarshaling shard %s for run %s: %w", shardID, runID, err)
		}

		shardStore := store.New(maxExamples, maxLocations)
		for _, cw := range wire {
			shardStore.LoadCategory(cw.Tag, cw.Description, cw.Count, cw.ExamplesFull, cw.Examples)
		}
		store.Merge(merged, shardStore)
	}

	return merged, nil
}

// ShardCount reports how many shards have been flushed so far for runID,
// useful for a coordinator waiting on a known worker count before
// merging.
func (c *Coordinator) ShardCount(ctx context.Context, runID string) (int64, error) {
	n, err := c.client.HLen(ctx, c.runKey(runID)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting shards for run %s: %w", runID, err)
	}
	return n, nil
}

func (c *Coordinator) runKey(runID string) string {
	return c.prefix + runID
}
