package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testSnapshot(t *testing.T) *DictionarySnapshot {
	t.Helper()
	cache := NewDictionaryCache(&fakeTagSource{entries: testEntries()}, time.Hour, 3, zap.NewNop())
	return cache.Get(context.Background())
}

func TestSuggestKeys_ClosestFirst(t *testing.T) {
	as := NewAdminService(nil, nil, nil, zap.NewNop())
	snapshot := testSnapshot(t)

	// "nguov" là lỗi gõ của "nguoc"
	got := as.SuggestKeys(snapshot, "nguov", 3)
	if len(got) == 0 {
		t.Fatal("SuggestKeys trả về rỗng")
	}
	if got[0].Key != "nguoc" {
		t.Errorf("gợi ý đầu = %q, want nguoc", got[0].Key)
	}
	if got[0].CanonicalName != "Ngược" {
		t.Errorf("canonical của gợi ý đầu = %q, want Ngược", got[0].CanonicalName)
	}
	if got[0].Distance != 1 {
		t.Errorf("distance = %d, want 1", got[0].Distance)
	}
}

func TestSuggestKeys_TopK(t *testing.T) {
	as := NewAdminService(nil, nil, nil, zap.NewNop())
	snapshot := testSnapshot(t)

	got := as.SuggestKeys(snapshot, "dam me", 2)
	if len(got) != 2 {
		t.Errorf("SuggestKeys trả về %d gợi ý, want 2 (topK)", len(got))
	}
}

func TestSuggestKeys_EdgeCases(t *testing.T) {
	as := NewAdminService(nil, nil, nil, zap.NewNop())
	snapshot := testSnapshot(t)

	if got := as.SuggestKeys(snapshot, "", 3); got != nil {
		t.Errorf("SuggestKeys(tag rỗng) = %v, want nil", got)
	}
	if got := as.SuggestKeys(snapshot, "nguoc", 0); got != nil {
		t.Errorf("SuggestKeys(topK=0) = %v, want nil", got)
	}

	empty := &DictionarySnapshot{Mapping: map[string]string{}}
	if got := as.SuggestKeys(empty, "nguoc", 3); got != nil {
		t.Errorf("SuggestKeys(snapshot rỗng) = %v, want nil", got)
	}
}

// TestSuggestKeys_Deterministic: cùng input cho cùng thứ tự kể cả khi
// điểm bằng nhau
func TestSuggestKeys_Deterministic(t *testing.T) {
	as := NewAdminService(nil, nil, nil, zap.NewNop())
	snapshot := testSnapshot(t)

	first := as.SuggestKeys(snapshot, "dam", 5)
	for i := 0; i < 10; i++ {
		got := as.SuggestKeys(snapshot, "dam", 5)
		if len(got) != len(first) {
			t.Fatalf("SuggestKeys không deterministic: %v vs %v", got, first)
		}
		for j := range first {
			if got[j].Key != first[j].Key {
				t.Fatalf("SuggestKeys không deterministic tại %d: %q vs %q", j, got[j].Key, first[j].Key)
			}
		}
	}
}
