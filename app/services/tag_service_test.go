package services

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/vexchzi/timtruyenbl-sub000/app/config"
	"github.com/vexchzi/timtruyenbl-sub000/app/models"
	"github.com/vexchzi/timtruyenbl-sub000/internal/normalizer"
	"go.uber.org/zap"
)

// fakeRecorder gom các unmatched tag để assert
type fakeRecorder struct {
	mu       sync.Mutex
	recorded []string
}

func (f *fakeRecorder) RecordUnmatched(normalized, original string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, normalized)
}

func (f *fakeRecorder) has(normalized string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recorded {
		if r == normalized {
			return true
		}
	}
	return false
}

func newTestTagService(t *testing.T, entries []models.TagEntry, recorder UnmatchedRecorder) *TagService {
	t.Helper()

	cfg := config.Default().Matching
	dictionary := NewDictionaryCache(&fakeTagSource{entries: entries}, time.Hour, cfg.MinContainKeyLen, zap.NewNop())

	miner, err := normalizer.NewDescriptionTagMiner()
	if err != nil {
		t.Fatalf("NewDescriptionTagMiner failed: %v", err)
	}

	return NewTagService(dictionary, miner, cfg, recorder, zap.NewNop())
}

func blTestEntries() []models.TagEntry {
	return []models.TagEntry{
		{CanonicalName: "Happy Ending", PrimaryKeyword: "he", Aliases: []string{"happy ending"}, Active: true},
		{CanonicalName: "Ngược", PrimaryKeyword: "nguoc", Active: true},
		{CanonicalName: "Đam Mỹ", PrimaryKeyword: "dam my", Aliases: []string{"danmei"}, Active: true},
		{CanonicalName: "NTR", PrimaryKeyword: "ntr", Active: true},
		{CanonicalName: "NP", PrimaryKeyword: "np", Active: true},
		{CanonicalName: "Sủng", PrimaryKeyword: "sung", Active: true},
	}
}

func TestNormalizeTags_ExactAndAlias(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	testCases := []struct {
		name     string
		rawTags  []string
		expected []string
	}{
		{
			name:     "Exact_With_Diacritics",
			rawTags:  []string{"Đam mỹ"},
			expected: []string{"Đam Mỹ"},
		},
		{
			name:     "Alias",
			rawTags:  []string{"danmei"},
			expected: []string{"Đam Mỹ"},
		},
		{
			name:     "Short_Key_Exact",
			rawTags:  []string{"HE"},
			expected: []string{"Happy Ending"},
		},
		{
			name:     "Dedupe_Same_Canonical",
			rawTags:  []string{"Đam mỹ", "danmei", "DAM MY"},
			expected: []string{"Đam Mỹ"},
		},
		{
			name:     "Sorted_Output",
			rawTags:  []string{"nguoc", "he", "dam my"},
			expected: []string{"Happy Ending", "Ngược", "Đam Mỹ"},
		},
		{
			name:     "Unknown_Dropped",
			rawTags:  []string{"xuyen khong chi ton"},
			expected: []string{},
		},
		{
			name:     "Empty_Input",
			rawTags:  nil,
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ts.NormalizeTags(context.Background(), tc.rawTags, "")
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tc.rawTags, got, tc.expected)
			}
		})
	}
}

// TestNormalizeTags_Containment: key đủ dài nằm trong tag dài hơn thì match
func TestNormalizeTags_Containment(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	got := ts.NormalizeTags(context.Background(), []string{"Ngược thân"}, "")
	want := []string{"Ngược"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags(Ngược thân) = %v, want %v", got, want)
	}

	// Chiều ngược lại không match: tag ngắn không chứa key dài
	got = ts.NormalizeTags(context.Background(), []string{"dam"}, "")
	if len(got) != 0 {
		t.Errorf("NormalizeTags(dam) = %v, want empty (tag không chứa key nào)", got)
	}
}

// TestNormalizeTags_TokenFallback: không exact, không containment thì thử
// từng token
func TestNormalizeTags_TokenFallback(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	// "he sung" không phải key nào, nhưng token "he" và "sung" đều là key.
	// "sung" match qua containment trước (len >= 3) nên để cô lập token
	// fallback, dùng tag chỉ chứa key ngắn
	got := ts.NormalizeTags(context.Background(), []string{"ending he"}, "")
	want := []string{"Happy Ending"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags(ending he) = %v, want %v", got, want)
	}
}

// TestNormalizeTags_NegationGuard: tag có marker phủ định không được gán
// sensitive tag
func TestNormalizeTags_NegationGuard(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	testCases := []struct {
		name     string
		rawTags  []string
		expected []string
	}{
		{
			name:     "Khong_Co_NTR_NP",
			rawTags:  []string{"không có NTR – NP"},
			expected: []string{},
		},
		{
			name:     "Plain_NTR_Matches",
			rawTags:  []string{"NTR"},
			expected: []string{"NTR"},
		},
		{
			name:     "Both_In_One_Request",
			rawTags:  []string{"không có NTR – NP", "NTR"},
			expected: []string{"NTR"},
		},
		{
			name:     "No_NTR_English",
			rawTags:  []string{"no ntr"},
			expected: []string{},
		},
		{
			name:     "Without_NTR",
			rawTags:  []string{"without ntr"},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ts.NormalizeTags(context.Background(), tc.rawTags, "")
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tc.rawTags, got, tc.expected)
			}
		})
	}
}

// TestNormalizeTags_StandaloneGuard: sensitive key phải đứng thành token trọn
// vẹn, "np" không được match bên trong từ khác
func TestNormalizeTags_StandaloneGuard(t *testing.T) {
	entries := append(blTestEntries(),
		models.TagEntry{CanonicalName: "Napoleon", PrimaryKeyword: "napoleon", Active: true})
	ts := newTestTagService(t, entries, nil)

	got := ts.NormalizeTags(context.Background(), []string{"napoleon"}, "")
	want := []string{"Napoleon"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags(napoleon) = %v, want %v (không được gán NP)", got, want)
	}
}

// TestNormalizeTags_SensitiveSubstringRejected: sensitive key xuất hiện bên
// trong một từ dài không liên quan không được match qua pass containment
func TestNormalizeTags_SensitiveSubstringRejected(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	testCases := []struct {
		name    string
		rawTags []string
	}{
		// "central" chứa "ntr" nhưng không phải token đứng riêng
		{name: "Central_Not_NTR", rawTags: []string{"central"}},
		{name: "Control_Not_NTR", rawTags: []string{"control freak"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ts.NormalizeTags(context.Background(), tc.rawTags, "")
			if len(got) != 0 {
				t.Errorf("NormalizeTags(%v) = %v, want empty (sensitive key trong từ khác)", tc.rawTags, got)
			}
		})
	}

	// Cùng key đó đứng riêng trong tag dài hơn thì vẫn match bình thường
	got := ts.NormalizeTags(context.Background(), []string{"co ntr nhe"}, "")
	want := []string{"NTR"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags(co ntr nhe) = %v, want %v", got, want)
	}
}

// TestNormalizeTags_NegationOnlyAffectsSensitive: marker phủ định không chặn
// tag thường
func TestNormalizeTags_NegationOnlyAffectsSensitive(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	got := ts.NormalizeTags(context.Background(), []string{"không ngược thân"}, "")
	want := []string{"Ngược"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags(không ngược thân) = %v, want %v", got, want)
	}
}

func TestNormalizeTags_Blacklist(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	got := ts.NormalizeTags(context.Background(), []string{"truyện", "edit", "full"}, "")
	if len(got) != 0 {
		t.Errorf("NormalizeTags(blacklist) = %v, want empty", got)
	}
}

// TestNormalizeTags_DescriptionMining: tag mine từ mô tả được đối xử như tag
// scrape
func TestNormalizeTags_DescriptionMining(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	description := "Văn án dài dòng.\nThể loại: đam mỹ, HE"
	got := ts.NormalizeTags(context.Background(), []string{"ngược"}, description)
	want := []string{"Happy Ending", "Ngược", "Đam Mỹ"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags with description = %v, want %v", got, want)
	}
}

// TestNormalizeTags_Deterministic: cùng input phải cho cùng output
func TestNormalizeTags_Deterministic(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	rawTags := []string{"Đam mỹ", "ngược thân", "HE", "không có NTR"}
	first := ts.NormalizeTags(context.Background(), rawTags, "")
	for i := 0; i < 10; i++ {
		if got := ts.NormalizeTags(context.Background(), rawTags, ""); !reflect.DeepEqual(got, first) {
			t.Fatalf("NormalizeTags không deterministic: %v vs %v", got, first)
		}
	}
}

// TestNormalizeTags_Idempotent: đưa output canonical qua pipeline lần nữa
// phải ra chính nó
func TestNormalizeTags_Idempotent(t *testing.T) {
	ts := newTestTagService(t, blTestEntries(), nil)

	first := ts.NormalizeTags(context.Background(), []string{"Đam mỹ", "HE", "ngược"}, "")
	second := ts.NormalizeTags(context.Background(), first, "")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("pipeline không idempotent: first=%v second=%v", first, second)
	}
}

func TestNormalizeTags_RecordsUnmatched(t *testing.T) {
	recorder := &fakeRecorder{}
	ts := newTestTagService(t, blTestEntries(), recorder)

	ts.NormalizeTags(context.Background(), []string{"xuyên không chí tôn"}, "")

	// Recorder được gọi async
	deadline := time.Now().Add(time.Second)
	for !recorder.has("xuyen khong chi ton") {
		if time.Now().After(deadline) {
			t.Fatal("unmatched tag không được record trong 1s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
