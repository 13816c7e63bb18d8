package giturl

import (
	"regexp"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

var keyAlphabet = regexp.MustCompile(`^[A-Za-z0-9._%-]+$`)

func hostGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z]([a-z0-9-]{0,8}[a-z0-9])?\.[a-z]{2,6}`)
}

func pathGen() *rapid.Generator[string] {
	segment := rapid.StringMatching(`[a-zA-Z0-9][a-zA-Z0-9-]{0,12}`)
	return rapid.Custom(func(t *rapid.T) string {
		n := rapid.IntRange(1, 4).Draw(t, "segments")
		parts := make([]string, n)
		for i := range parts {
			parts[i] = segment.Draw(t, "segment")
		}
		return strings.Join(parts, "/")
	})
}

// Surface variants of one remote must share a key.
func TestKey_VariantsOfSameRemoteAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		host := hostGen().Draw(t, "host")
		path := pathGen().Draw(t, "path")

		base := "https://" + host + "/" + path
		variants := []string{
			base,
			base + ".git",
			base + "/",
			base + ".git/",
			"https://" + strings.ToUpper(host) + "/" + path,
			"https://alice:s3cret@" + host + "/" + path,
			"git@" + host + ":" + path + ".git",
			"ssh://git@" + host + "/" + path,
			"git://" + host + "/" + path,
			"  " + base + "  ",
		}

		want := Key(base)
		if want == "" {
			t.Fatalf("key for %q is empty", base)
		}
		for _, variant := range variants {
			if got := Key(variant); got != want {
				t.Fatalf("Key(%q) = %q, want %q (variant of %q)", variant, got, want, base)
			}
		}
	})
}

// Distinct remotes must get distinct keys.
func TestKey_DistinctRemotesDiffer(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		host := hostGen().Draw(t, "host")
		pathA := pathGen().Draw(t, "pathA")
		pathB := pathGen().Draw(t, "pathB")
		if pathA == pathB {
			t.Skip("same path")
		}

		keyA := Key("https://" + host + "/" + pathA)
		keyB := Key("https://" + host + "/" + pathB)
		if keyA == keyB {
			t.Fatalf("paths %q and %q collided on key %q", pathA, pathB, keyA)
		}
	})
}

// Any input maps to some key, deterministically.
func TestNormalize_TotalAndDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		location := rapid.String().Draw(t, "location")

		first := Normalize(location)
		second := Normalize(location)
		if first != second {
			t.Fatalf("Normalize(%q) is not deterministic: %q vs %q", location, first, second)
		}
		if Key(location) != Key(location) {
			t.Fatalf("Key(%q) is not deterministic", location)
		}
	})
}

// Keys stay inside the portable filename alphabet and length budget.
func TestKey_IsFilesystemSafe(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		location := rapid.String().Draw(t, "location")

		key := Key(location)
		if key == "" {
			return
		}
		if len(key) > maxKeyLength {
			t.Fatalf("key %q exceeds length limit", key)
		}
		if strings.HasPrefix(key, ".") {
			t.Fatalf("key %q is a dotfile name", key)
		}
		if !keyAlphabet.MatchString(key) {
			t.Fatalf("key %q leaves the filename alphabet", key)
		}
	})
}
