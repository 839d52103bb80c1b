package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "algebra.json")
	p.OnBuildComplete(ctx, "algebra.json", 120, 340, time.Second, nil)
	p.OnValidateComplete(ctx, "strict", 340, 0, nil)
	p.OnPersistStart(ctx, "neo4j", 120, 340)
	p.OnPersistComplete(ctx, "neo4j", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "import")
	c.OnCacheMiss(ctx, "build")
	c.OnCacheSet(ctx, "quality", 1024)

	s := NoopStoreHooks{}
	s.OnQuery(ctx, "neo4j", "merge_nodes", time.Second)
	s.OnError(ctx, "mongo", "replace", nil)
}

type testPipelineHooks struct {
	NoopPipelineHooks
	builds int
}

func (h *testPipelineHooks) OnBuildStart(context.Context, string) { h.builds++ }

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *testCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	Pipeline().OnBuildStart(context.Background(), "algebra.json")
	if customPipeline.builds != 1 {
		t.Error("registered hooks should receive events")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// nil registration is ignored
	SetPipelineHooks(nil)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks(nil) should be a no-op")
	}
}
