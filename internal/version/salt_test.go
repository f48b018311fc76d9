package version

import (
	"regexp"
	"testing"
	"time"
)

var stampRE = regexp.MustCompile(`^\d{14}$`)

func TestSalt_FeatureBranch(t *testing.T) {
	r := Salt("abc123", "", "feature-x", "main", time.Now())
	if !stampRE.MatchString(r.Stamp) {
		t.Fatalf("unexpected stamp: %q", r.Stamp)
	}
	if r.Final != "abc123-feature-x-"+r.Stamp {
		t.Fatalf("unexpected final: %q", r.Final)
	}
	if r.Salt != "feature-x" {
		t.Fatalf("unexpected salt: %q", r.Salt)
	}
}

func TestSalt_TrunkUnsalted(t *testing.T) {
	r := Salt("abc123", "", "main", "main", time.Now())
	if r.Final != "abc123" || r.Salt != "" || r.Stamp != "" {
		t.Fatalf("unexpected: %+v", r)
	}
}

func TestSalt_SuffixWinsOverBranch(t *testing.T) {
	now := time.Date(2024, 12, 31, 23, 59, 58, 0, time.UTC)
	r := Salt("abc123", "rc1", "main", "main", now)
	if r.Final != "abc123-rc1-20241231235958" {
		t.Fatalf("unexpected final: %q", r.Final)
	}
}

func TestStamp_UTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	got := Stamp(time.Date(2024, 1, 2, 3, 4, 5, 0, loc))
	if got != "20240102010405" {
		t.Fatalf("unexpected stamp: %s", got)
	}
}
