package web

import (
	"testing"

	"github.com/tordrt/tablediff/internal/diff"
)

func TestReportStore(t *testing.T) {
	s, err := newReportStore(1)
	if err != nil {
		t.Fatal(err)
	}

	first := s.Put(&diff.Report{KeyColumn: "a"})
	if got, ok := s.Get(first); !ok || got.KeyColumn != "a" {
		t.Fatalf("Get(first) = %v, %v", got, ok)
	}

	second := s.Put(&diff.Report{KeyColumn: "b"})
	if first == second {
		t.Fatal("ids should be unique")
	}
	if _, ok := s.Get(first); ok {
		t.Error("first report should have been evicted")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Get("not-a-uuid"); ok {
		t.Error("Get(invalid) should miss")
	}
}

func TestNewReportStoreInvalidSize(t *testing.T) {
	if _, err := newReportStore(0); err == nil {
		t.Error("expected error for size 0")
	}
}
