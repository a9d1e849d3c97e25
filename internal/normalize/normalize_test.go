package normalize

import "testing"

func TestNormalize_DiacriticsAndFolding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"alef with hamza above folds", "أحمد", "احمد"},
		{"alef with hamza below folds", "إبراهيم", "ابراهيم"},
		{"teh marbuta folds to heh", "فاطمة", "فاطمه"},
		{"ascii lowercased", "Mohammed ALI", "mohammed ali"},
		{"punctuation collapses to space", "ali,   mohammed--al-jbouri", "ali mohammed al jbouri"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"فاطمة علي محمد الجبوري",
		"  Mohammed   ALI  ",
		"أحمد-إبراهيم، حسين",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("فاطمة  علي   محمد")
	want := []string{"فاطمه", "علي", "محمد"}
	if len(got) != len(want) {
		t.Fatalf("Tokens() returned %d tokens, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDigitsOnlyAndLastNDigits(t *testing.T) {
	if got := DigitsOnly("+964-770-123-4567"); got != "9647701234567" {
		t.Errorf("DigitsOnly() = %q, want %q", got, "9647701234567")
	}
	if got := LastNDigits("+964-770-123-4567", 4); got != "4567" {
		t.Errorf("LastNDigits(4) = %q, want %q", got, "4567")
	}
	if got := LastNDigits("12", 4); got != "" {
		t.Errorf("LastNDigits on short string = %q, want empty", got)
	}
}

func TestNormalizeChildrenField(t *testing.T) {
	fromString := NormalizeChildrenField("علي؛ حسن،محمد")
	if len(fromString) == 0 {
		t.Fatalf("expected at least one child parsed from string form, got %v", fromString)
	}

	fromSlice := NormalizeChildrenField([]string{"a", "b"})
	if len(fromSlice) != 2 {
		t.Errorf("expected identity pass-through for []string, got %v", fromSlice)
	}

	if got := NormalizeChildrenField(42); got != nil {
		t.Errorf("expected nil for unsupported type, got %v", got)
	}
}
