package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b-1", BuildID("b-1")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "intro.md", File("intro.md")},
		{"Page", KeyPage, "Intro", Page("Intro")},
		{"Route", KeyRoute, "/intro", Route("/intro")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Template", KeyTemplate, "page", Template("page")},
		{"Mirror", KeyMirror, "/m", Mirror("/m")},
		{"Remote", KeyRemote, "https://example", Remote("https://example")},
		{"Branch", KeyBranch, "main", Branch("main")},
		{"State", KeyState, "up-to-date", State("up-to-date")},
		{"Commit", KeyCommit, "0123abcd", Commit("0123abcdef0123abcdef")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestErrorNil(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", a.Value.String())
	}
}
