package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"go.uber.org/zap"
)

// fakeTagSource nguồn từ điển in-memory cho test
type fakeTagSource struct {
	mu         sync.Mutex
	entries    []models.TagEntry
	err        error
	delay      time.Duration
	fetchCount int
}

func (f *fakeTagSource) FetchActive(ctx context.Context) ([]models.TagEntry, error) {
	f.mu.Lock()
	f.fetchCount++
	err := f.err
	entries := f.entries
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *fakeTagSource) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCount
}

func (f *fakeTagSource) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func testEntries() []models.TagEntry {
	return []models.TagEntry{
		{CanonicalName: "Happy Ending", PrimaryKeyword: "he", Aliases: []string{"happy ending"}, Category: models.CategoryEnding, Active: true},
		{CanonicalName: "Ngược", PrimaryKeyword: "nguoc", Category: models.CategoryContent, Active: true},
		{CanonicalName: "Đam Mỹ", PrimaryKeyword: "dam my", Aliases: []string{"danmei"}, Category: models.CategoryGenre, Active: true},
	}
}

func TestDictionaryCache_GetBuildsSnapshot(t *testing.T) {
	source := &fakeTagSource{entries: testEntries()}
	cache := NewDictionaryCache(source, 5*time.Minute, 3, zap.NewNop())

	snap := cache.Get(context.Background())

	if snap.Size() != 5 {
		t.Errorf("snapshot size = %d, want 5 (3 primary + 2 aliases)", snap.Size())
	}

	testCases := []struct {
		key      string
		expected string
	}{
		{"he", "Happy Ending"},
		{"happy ending", "Happy Ending"},
		{"nguoc", "Ngược"},
		{"dam my", "Đam Mỹ"},
		{"danmei", "Đam Mỹ"},
	}
	for _, tc := range testCases {
		name, ok := snap.Lookup(tc.key)
		if !ok || name != tc.expected {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, true)", tc.key, name, ok, tc.expected)
		}
	}

	// Key "he" ngắn hơn 3 ký tự thì không được vào ContainKeys
	for _, key := range snap.ContainKeys {
		if len(key) < 3 {
			t.Errorf("ContainKeys chứa key ngắn %q", key)
		}
	}
}

func TestDictionaryCache_ServesFreshWithoutRefetch(t *testing.T) {
	source := &fakeTagSource{entries: testEntries()}
	cache := NewDictionaryCache(source, 5*time.Minute, 3, zap.NewNop())

	cache.Get(context.Background())
	cache.Get(context.Background())
	cache.Get(context.Background())

	if source.fetches() != 1 {
		t.Errorf("fetchCount = %d, want 1 (snapshot còn hạn thì không refetch)", source.fetches())
	}
}

func TestDictionaryCache_RefreshesAfterTTL(t *testing.T) {
	source := &fakeTagSource{entries: testEntries()}
	cache := NewDictionaryCache(source, 10*time.Millisecond, 3, zap.NewNop())

	cache.Get(context.Background())
	time.Sleep(20 * time.Millisecond)
	cache.Get(context.Background())

	if source.fetches() != 2 {
		t.Errorf("fetchCount = %d, want 2 (hết TTL phải refetch)", source.fetches())
	}
}

func TestDictionaryCache_Invalidate(t *testing.T) {
	source := &fakeTagSource{entries: testEntries()}
	cache := NewDictionaryCache(source, time.Hour, 3, zap.NewNop())

	cache.Get(context.Background())
	cache.Invalidate()
	cache.Get(context.Background())

	if source.fetches() != 2 {
		t.Errorf("fetchCount = %d, want 2 (Invalidate phải buộc refresh)", source.fetches())
	}
}

// TestDictionaryCache_StaleOnError: fetch lỗi thì tiếp tục serve snapshot cũ
func TestDictionaryCache_StaleOnError(t *testing.T) {
	source := &fakeTagSource{entries: testEntries()}
	cache := NewDictionaryCache(source, 10*time.Millisecond, 3, zap.NewNop())

	first := cache.Get(context.Background())
	if first.Size() == 0 {
		t.Fatal("first snapshot rỗng")
	}

	source.setErr(errors.New("mongo down"))
	time.Sleep(20 * time.Millisecond)

	stale := cache.Get(context.Background())
	if stale.Size() != first.Size() {
		t.Errorf("stale snapshot size = %d, want %d (phải serve snapshot cũ khi lỗi)", stale.Size(), first.Size())
	}
	if _, ok := stale.Lookup("he"); !ok {
		t.Error("stale snapshot mất key 'he'")
	}
}

// TestDictionaryCache_EmptyWhenNeverLoaded: chưa từng load được thì trả
// snapshot rỗng, không trả nil
func TestDictionaryCache_EmptyWhenNeverLoaded(t *testing.T) {
	source := &fakeTagSource{err: errors.New("mongo down")}
	cache := NewDictionaryCache(source, time.Minute, 3, zap.NewNop())

	snap := cache.Get(context.Background())
	if snap == nil {
		t.Fatal("Get trả về nil thay vì snapshot rỗng")
	}
	if snap.Size() != 0 {
		t.Errorf("snapshot size = %d, want 0", snap.Size())
	}
}

// TestDictionaryCache_SingleFlightRefresh: nhiều Get cùng thấy snapshot hết
// hạn thì chỉ một goroutine fetch
func TestDictionaryCache_SingleFlightRefresh(t *testing.T) {
	source := &fakeTagSource{entries: testEntries(), delay: 50 * time.Millisecond}
	cache := NewDictionaryCache(source, 30*time.Millisecond, 3, zap.NewNop())

	cache.Get(context.Background())
	time.Sleep(40 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := cache.Get(context.Background())
			if snap.Size() == 0 {
				t.Error("Get trả về snapshot rỗng trong lúc refresh")
			}
		}()
	}
	wg.Wait()

	if got := source.fetches(); got != 2 {
		t.Errorf("fetchCount = %d, want 2 (warm up + một lần refresh duy nhất)", got)
	}
}

// TestDictionaryCache_LastWriteWins: key trùng thì entry fetch sau thắng
func TestDictionaryCache_LastWriteWins(t *testing.T) {
	source := &fakeTagSource{entries: []models.TagEntry{
		{CanonicalName: "Sủng", PrimaryKeyword: "sung", Active: true},
		{CanonicalName: "Sủng Văn", PrimaryKeyword: "sung", Active: true},
	}}
	cache := NewDictionaryCache(source, time.Minute, 3, zap.NewNop())

	snap := cache.Get(context.Background())
	name, ok := snap.Lookup("sung")
	if !ok || name != "Sủng Văn" {
		t.Errorf("Lookup(sung) = (%q, %v), want (Sủng Văn, true)", name, ok)
	}
}

// TestDictionaryCache_NormalizesKeysDefensively: key chưa chuẩn hóa trong DB
// vẫn được chuẩn hóa lại khi build snapshot
func TestDictionaryCache_NormalizesKeysDefensively(t *testing.T) {
	source := &fakeTagSource{entries: []models.TagEntry{
		{CanonicalName: "Ngược", PrimaryKeyword: "Ngược ", Active: true},
	}}
	cache := NewDictionaryCache(source, time.Minute, 3, zap.NewNop())

	snap := cache.Get(context.Background())
	if _, ok := snap.Lookup("nguoc"); !ok {
		t.Error("key 'Ngược ' phải được chuẩn hóa thành 'nguoc' trong snapshot")
	}
}
