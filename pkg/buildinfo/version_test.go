package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	t.Cleanup(func() { Version = old })

	if got := Get(); got.Version != "v1.2.3" || got.Commit != Commit || got.Date != Date {
		t.Errorf("Get() = %+v", got)
	}
	if tpl := Template(); !strings.Contains(tpl, "v1.2.3") || !strings.HasPrefix(tpl, "{{.Name}}") {
		t.Errorf("Template() = %q", tpl)
	}
}
