package match

import "testing"

func TestScoreExactSubstring(t *testing.T) {
	t.Parallel()

	if got := Score("latte", "Iced Latte Grande"); got != 100 {
		t.Fatalf("expected 100 for substring hit, got %d", got)
	}
	if got := Score("  LATTE ", "iced latte"); got != 100 {
		t.Fatalf("expected normalization before matching, got %d", got)
	}
}

func TestScorePartial(t *testing.T) {
	t.Parallel()

	got := Score("esspreso", "espresso roast")
	if got <= 50 || got >= 100 {
		t.Fatalf("expected partial score between 50 and 100, got %d", got)
	}

	if got := Score("zzzz", "espresso"); got > 30 {
		t.Fatalf("expected low score for unrelated keyword, got %d", got)
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	t.Parallel()

	if got := Score("", "anything"); got != 0 {
		t.Fatalf("expected 0 for empty keyword, got %d", got)
	}
	if got := Score("keyword", "   "); got != 0 {
		t.Fatalf("expected 0 for blank text, got %d", got)
	}
}

func TestMatchThreshold(t *testing.T) {
	t.Parallel()

	if !Match("latte", "iced latte", 80) {
		t.Fatal("expected substring hit to clear the threshold")
	}
	if Match("zzzz", "espresso", 80) {
		t.Fatal("did not expect unrelated keyword to clear the threshold")
	}
}
