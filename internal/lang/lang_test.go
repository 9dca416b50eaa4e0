package lang

import "testing"

func TestMatch_ByKey(t *testing.T) {
	t.Parallel()
	c := Default()
	s, ok := c.Match("3")
	if !ok {
		t.Fatal("expected key 3 to match")
	}
	if s.Label != "English" || s.Locale != "en-US" {
		t.Errorf("key 3 resolved to %+v, want English/en-US", s)
	}
}

func TestMatch_ByLabelCaseInsensitive(t *testing.T) {
	t.Parallel()
	c := Default()
	for _, reply := range []string{"Ukrainian", "ukrainian", "  UKRAINIAN  "} {
		s, ok := c.Match(reply)
		if !ok {
			t.Fatalf("expected %q to match", reply)
		}
		if s.Voice != "uk-UA-PolinaNeural" {
			t.Errorf("%q resolved to voice %q", reply, s.Voice)
		}
	}
}

func TestMatch_ByLanguageSubtag(t *testing.T) {
	t.Parallel()
	c := Default()
	s, ok := c.Match("ru")
	if !ok {
		t.Fatal("expected 'ru' to match")
	}
	if s.Locale != "ru-RU" {
		t.Errorf("'ru' resolved to %q", s.Locale)
	}
}

func TestMatch_Unrecognised(t *testing.T) {
	t.Parallel()
	c := Default()
	for _, reply := range []string{"5", "klingon", "", "   ", "en-GB-extra"} {
		if _, ok := c.Match(reply); ok {
			t.Errorf("expected %q not to match", reply)
		}
	}
}
