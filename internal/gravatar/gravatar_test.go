package gravatar

import (
	"strings"
	"testing"
)

func TestURLDeterministic(t *testing.T) {
	a := URL("someone@example.com")
	b := URL("someone@example.com")

	if a != b {
		t.Errorf("same email produced different URLs: %q vs %q", a, b)
	}
}

func TestURLNormalizesEmail(t *testing.T) {
	a := URL("Someone@Example.com")
	b := URL("  someone@example.com  ")

	if a != b {
		t.Errorf("case/whitespace variants should produce the same URL: %q vs %q", a, b)
	}
}

func TestURLDiffersPerEmail(t *testing.T) {
	if URL("a@x.com") == URL("b@x.com") {
		t.Error("different emails produced the same URL")
	}
}

func TestURLParams(t *testing.T) {
	u := URL("a@x.com")

	if !strings.HasPrefix(u, "https://www.gravatar.com/avatar/") {
		t.Errorf("unexpected URL prefix: %q", u)
	}
	if !strings.HasSuffix(u, "?s=200&r=pg&d=mm") {
		t.Errorf("unexpected URL params: %q", u)
	}
}
