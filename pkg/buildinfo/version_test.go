package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetKeepsLdflags(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	i := Get()
	if i.Version != "v1.2.3" {
		t.Errorf("Version = %q, want v1.2.3", i.Version)
	}
	if i.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", i.GoVersion, runtime.Version())
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.Contains(String(), "go: "+runtime.Version()) {
		t.Errorf("String() = %q, missing go version", String())
	}
}
