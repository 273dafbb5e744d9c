package normalize

import "testing"

func TestTextCollapsesWhitespace(t *testing.T) {
	got := Text("  hello   world\n\tthis  is a test ")
	want := "hello world this is a test"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestTextCaseFolds(t *testing.T) {
	if Text("Hello WORLD") != Text("hello world") {
		t.Fatalf("case folding should unify variants")
	}
}

func TestTextStripsZeroWidth(t *testing.T) {
	if Text("he​llo") != "hello" {
		t.Fatalf("zero-width runes should be removed")
	}
}

func TestTextNFKC(t *testing.T) {
	// fullwidth latin should normalize to ascii
	if Text("ｈｅｌｌｏ") != "hello" {
		t.Fatalf("NFKC normalization missing")
	}
}

func TestTextPreservesDistinctContent(t *testing.T) {
	if Text("hello world") == Text("hello worlds") {
		t.Fatalf("distinct content must stay distinct")
	}
}
