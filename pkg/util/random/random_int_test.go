package random

import (
	"strings"
	"testing"
)

func TestNewUuid(t *testing.T) {
	id := NewUuid("G")
	if !strings.HasPrefix(id, "G") {
		t.Fatalf("missing prefix: %s", id)
	}
	// 前缀 1 位 + 日期 6 位 + 随机 11 位
	if len(id) != 18 {
		t.Fatalf("unexpected length %d: %s", len(id), id)
	}
	if id == NewUuid("G") {
		t.Fatal("expected distinct ids")
	}
}
