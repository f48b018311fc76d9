package version

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

type fakeVCS struct {
	rev string
	err error
}

func (f fakeVCS) ShortRevision() (string, error) { return f.rev, f.err }

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func depsAt() Deriver {
	return Deriver{Now: func() time.Time { return fixedNow }}
}

func explicitThenFile(policy Policy) []Step {
	return []Step{
		{Source: Explicit, Key: "VERSION"},
		{Source: File, Key: "VERSION_FILE", OnFileError: policy},
	}
}

func writeVersionFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "version.txt")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write version file: %v", err)
	}
	return p
}

func TestDerive_ExplicitBeatsFile(t *testing.T) {
	p := writeVersionFile(t, "from-file\n")
	got, err := depsAt().Derive(map[string]string{"VERSION": "1.2.3", "VERSION_FILE": p}, explicitThenFile(PolicyFail))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if got.Value != "1.2.3" || got.Source != Explicit {
		t.Fatalf("unexpected candidate: %+v", got)
	}
}

func TestDerive_FileTrimmed(t *testing.T) {
	p := writeVersionFile(t, "  abc123 \n")
	got, err := depsAt().Derive(map[string]string{"VERSION_FILE": p}, explicitThenFile(PolicyFail))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if got.Value != "abc123" || got.Source != File {
		t.Fatalf("unexpected candidate: %+v", got)
	}
}

func TestDerive_LocalIsAbsent(t *testing.T) {
	p := writeVersionFile(t, "9.9.9")
	for _, v := range []string{"local", "LOCAL", " Local "} {
		got, err := depsAt().Derive(map[string]string{"VERSION": v, "VERSION_FILE": p}, explicitThenFile(PolicyFail))
		if err != nil {
			t.Fatalf("derive %q: %v", v, err)
		}
		if got.Value != "9.9.9" {
			t.Fatalf("%q: expected file value, got %+v", v, got)
		}
	}
}

func TestDerive_MissingFilePolicies(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")
	env := map[string]string{"VERSION_FILE": missing}

	_, err := depsAt().Derive(env, explicitThenFile(PolicyFail))
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FileError, got %v", err)
	}
	if fe.Path != missing {
		t.Fatalf("unexpected path: %s", fe.Path)
	}

	_, err = depsAt().Derive(env, explicitThenFile(PolicySkip))
	if !errors.Is(err, ErrNoVersion) {
		t.Fatalf("expected ErrNoVersion with skip policy, got %v", err)
	}
}

func TestDerive_VCSThenTimestamp(t *testing.T) {
	chain := []Step{
		{Source: Explicit, Key: "CONSUMER_VERSION"},
		{Source: VCS},
		{Source: Timestamp, Format: TimeFormatMillis},
	}
	d := depsAt()
	d.VCS = fakeVCS{rev: "abc1234\n"}
	got, err := d.Derive(map[string]string{}, chain)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if got.Value != "abc1234" || got.Source != VCS {
		t.Fatalf("unexpected candidate: %+v", got)
	}

	d.VCS = fakeVCS{err: errors.New("not a repo")}
	got, err = d.Derive(map[string]string{}, chain)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if got.Source != Timestamp || got.Value != "1741064767000" {
		t.Fatalf("unexpected fallback: %+v", got)
	}
}

func TestDerive_CompactTimestamp(t *testing.T) {
	got, err := depsAt().Derive(nil, []Step{{Source: Timestamp, Format: TimeFormatCompact}})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !regexp.MustCompile(`^\d{14}$`).MatchString(got.Value) {
		t.Fatalf("unexpected stamp: %q", got.Value)
	}
}

func TestDerive_Exhausted(t *testing.T) {
	_, err := depsAt().Derive(map[string]string{"VERSION": "  "}, explicitThenFile(PolicySkip))
	if !errors.Is(err, ErrNoVersion) {
		t.Fatalf("expected ErrNoVersion, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("skip"); err != nil || p != PolicySkip {
		t.Fatalf("unexpected: %v %v", p, err)
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Fatalf("expected error")
	}
}
