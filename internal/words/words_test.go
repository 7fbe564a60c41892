package words

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	b, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"student", "teacher", "pineapple", "apple", "flower"}
	if !slices.Equal(b.Words, want) {
		t.Fatalf("words = %v, want %v", b.Words, want)
	}
	if len(b.Digits) != 10 {
		t.Fatalf("digits = %v", b.Digits)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	data := "words: [Apple, ' kiwi ', apple, 'x-ray', '']\ndigits: [1, 2, 3, 3]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(b.Words, []string{"apple", "kiwi"}) {
		t.Fatalf("words = %v", b.Words)
	}
	if !slices.Equal(b.Digits, []int{1, 2, 3}) {
		t.Fatalf("digits = %v", b.Digits)
	}
}

func TestParseRejectsBadBanks(t *testing.T) {
	for _, data := range []string{
		"words: []\ndigits: [1,2,3]",
		"words: [apple]\ndigits: [1,2]",
		"words: [apple]\ndigits: [1,2,12]",
		"words: [apple\n",
	} {
		if _, err := Parse([]byte(data)); err == nil {
			t.Fatalf("Parse(%q) succeeded", data)
		}
	}
}

func TestPickerIsDeterministicForSeed(t *testing.T) {
	b, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	p1, _ := NewPicker(b, 42)
	p2, _ := NewPicker(b, 42)
	for i := 0; i < 20; i++ {
		if w1, w2 := p1.Word(), p2.Word(); w1 != w2 {
			t.Fatalf("draw %d: %q != %q", i, w1, w2)
		}
		if d1, d2 := p1.Digits(), p2.Digits(); d1 != d2 {
			t.Fatalf("draw %d: %v != %v", i, d1, d2)
		}
	}
}

func TestPickerDigitsAreDistinct(t *testing.T) {
	b := Bank{Words: []string{"apple"}, Digits: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}
	p, err := NewPicker(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[int]int{}
	for i := 0; i < 500; i++ {
		d := p.Digits()
		if d[0] == d[1] || d[0] == d[2] || d[1] == d[2] {
			t.Fatalf("repeated digit in %v", d)
		}
		for _, x := range d {
			if x < 0 || x > 9 {
				t.Fatalf("digit out of range in %v", d)
			}
			counts[x]++
		}
	}
	if len(counts) != 10 {
		t.Fatalf("500 draws covered only %d digits", len(counts))
	}
	if w, dg := p.Stats(); w != 1 || dg != 10 {
		t.Fatalf("stats = %d, %d", w, dg)
	}
}

func TestPickerSmallestPool(t *testing.T) {
	p, _ := NewPicker(Bank{Words: []string{"a"}, Digits: []int{7, 8, 9}}, 3)
	d := p.Digits()
	s := []int{d[0], d[1], d[2]}
	slices.Sort(s)
	if !slices.Equal(s, []int{7, 8, 9}) {
		t.Fatalf("digits = %v", d)
	}
}
