package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"storyframe-ai/log"

	"go.uber.org/zap"
)

func init() {
	log.Logger = zap.NewNop()
}

type fetchScript struct {
	mu        sync.Mutex
	snapshots [][]Item
	calls     int
}

func (f *fetchScript) fetch(ctx context.Context) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	if idx >= len(f.snapshots) {
		idx = len(f.snapshots) - 1
	}
	f.calls++
	return f.snapshots[idx], nil
}

func (f *fetchScript) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitStopped(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for w.Running() {
		select {
		case <-deadline:
			t.Fatal("等待停止超时")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStopsWhenAllTerminal(t *testing.T) {
	script := &fetchScript{snapshots: [][]Item{
		{{Id: 1, Status: "generating"}, {Id: 2, Status: "generating"}},
		{{Id: 1, Status: "completed"}, {Id: 2, Status: "generating"}},
		{{Id: 1, Status: "completed"}, {Id: 2, Status: "failed"}},
	}}

	w := New(5*time.Millisecond, script.fetch)
	w.Start(context.Background())
	waitStopped(t, w)

	if script.callCount() != 3 {
		t.Errorf("期望3次轮询后停止，实际 %d", script.callCount())
	}
	items := w.Items()
	if len(items) != 2 {
		t.Fatalf("快照长度错误: %d", len(items))
	}
	if items[0].Status != "completed" || items[1].Status != "failed" {
		t.Errorf("终态快照错误: %+v", items)
	}
}

func TestSnapshotReplacedWholesale(t *testing.T) {
	// 第二次快照少了一行，旧行不得残留
	script := &fetchScript{snapshots: [][]Item{
		{{Id: 1, Status: "generating"}, {Id: 2, Status: "generating"}},
		{{Id: 2, Status: "completed"}},
	}}

	w := New(5*time.Millisecond, script.fetch)
	w.Start(context.Background())
	waitStopped(t, w)

	items := w.Items()
	if len(items) != 1 || items[0].Id != 2 {
		t.Errorf("快照应被整体替换: %+v", items)
	}
}

func TestStartIdempotent(t *testing.T) {
	script := &fetchScript{snapshots: [][]Item{
		{{Id: 1, Status: "generating"}},
	}}

	w := New(10*time.Millisecond, script.fetch)
	w.Start(context.Background())
	w.Start(context.Background())
	w.Start(context.Background())

	time.Sleep(35 * time.Millisecond)
	w.Stop()

	// 只有一个循环在跑：调用次数与时间间隔匹配，而不是三倍
	if c := script.callCount(); c > 6 {
		t.Errorf("重复Start不应产生并发循环，轮询次数 %d", c)
	}
}

func TestStopTearsDown(t *testing.T) {
	script := &fetchScript{snapshots: [][]Item{
		{{Id: 1, Status: "generating"}},
	}}

	w := New(5*time.Millisecond, script.fetch)
	w.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	if w.Running() {
		t.Error("Stop后不应仍在运行")
	}
	before := script.callCount()
	time.Sleep(30 * time.Millisecond)
	if script.callCount() != before {
		t.Error("Stop后不应继续轮询")
	}
}

func TestOnUpdateCallback(t *testing.T) {
	script := &fetchScript{snapshots: [][]Item{
		{{Id: 1, Status: "generating"}},
		{{Id: 1, Status: "completed"}},
	}}

	var mu sync.Mutex
	var updates [][]Item

	w := New(5*time.Millisecond, script.fetch)
	w.OnUpdate(func(items []Item) {
		mu.Lock()
		updates = append(updates, items)
		mu.Unlock()
	})
	w.Start(context.Background())
	waitStopped(t, w)

	mu.Lock()
	defer mu.Unlock()
	if len(updates) != 2 {
		t.Fatalf("期望2次回调，实际 %d", len(updates))
	}
	if updates[1][0].Status != "completed" {
		t.Errorf("最终回调状态错误: %+v", updates[1])
	}
}

func TestRestartAfterStop(t *testing.T) {
	script := &fetchScript{snapshots: [][]Item{
		{{Id: 1, Status: "completed"}},
	}}

	w := New(5*time.Millisecond, script.fetch)
	w.Start(context.Background())
	waitStopped(t, w)

	// 终止后可再次启动
	w.Start(context.Background())
	waitStopped(t, w)

	if script.callCount() < 2 {
		t.Errorf("重启后应继续轮询，次数 %d", script.callCount())
	}
}
