// internal/words/words.go
//
// Word Bank and Number Target Generator.
//
// Responsibilities:
//   - Load the bank from a YAML file, or fall back to the embedded default.
//   - Normalise and validate it (lowercase alphabetic words, distinct digits 0–9).
//   - Draw targets with a seedable PRNG so games are reproducible in tests.
//
// File format:
//
//	words:  [student, teacher, pineapple]
//	digits: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9]
//
// The bank is read-only after loading; a Picker is safe for concurrent use.

package words

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/guessgames/assets"
)

// Bank is the fixed vocabulary and digit pool.
type Bank struct {
	Words  []string `yaml:"words"`
	Digits []int    `yaml:"digits"`
}

// Load reads the bank at path, or the embedded default when path is empty.
func Load(path string) (Bank, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = assets.WordBank()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Bank{}, fmt.Errorf("read word bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bank.
func Parse(data []byte) (Bank, error) {
	var raw Bank
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Bank{}, fmt.Errorf("parse word bank: %w", err)
	}

	var b Bank
	seen := make(map[string]struct{}, len(raw.Words))
	for _, w := range raw.Words {
		w = strings.TrimSpace(strings.ToLower(w))
		if !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		b.Words = append(b.Words, w)
	}
	if len(b.Words) == 0 {
		return Bank{}, errors.New("words: word list is empty")
	}

	var have [10]bool
	for _, d := range raw.Digits {
		if d < 0 || d > 9 {
			return Bank{}, fmt.Errorf("words: digit %d out of range", d)
		}
		if !have[d] {
			have[d] = true
			b.Digits = append(b.Digits, d)
		}
	}
	if len(b.Digits) < 3 {
		return Bank{}, fmt.Errorf("words: need at least 3 distinct digits, got %d", len(b.Digits))
	}
	return b, nil
}

// isAlpha reports whether s is non-empty lowercase ASCII letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Picker draws targets from a Bank.
type Picker struct {
	mu   sync.Mutex
	rng  *rand.Rand
	bank Bank
}

// NewPicker seeds a PRNG for bank. A zero seed is replaced by a random one.
func NewPicker(bank Bank, seed uint64) (*Picker, error) {
	if seed == 0 {
		s, err := NewSeed()
		if err != nil {
			return nil, err
		}
		seed = s
	}
	return &Picker{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		bank: bank,
	}, nil
}

// NewSeed returns a random seed from crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Word returns a uniformly chosen Hangman target.
func (p *Picker) Word() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bank.Words[p.rng.IntN(len(p.bank.Words))]
}

// Digits draws 3 distinct digits without replacement.
func (p *Picker) Digits() [3]int {
	pool := append([]int(nil), p.bank.Digits...)
	p.mu.Lock()
	defer p.mu.Unlock()
	var out [3]int
	for i := range out {
		j := i + p.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out[i] = pool[i]
	}
	return out
}

// Stats returns the bank sizes: (words, digits).
func (p *Picker) Stats() (wordCount int, digitCount int) {
	return len(p.bank.Words), len(p.bank.Digits)
}
