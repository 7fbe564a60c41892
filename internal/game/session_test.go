package game

import (
	"errors"
	"testing"
)

type fixedSource struct {
	word   string
	digits [3]int
}

func (f fixedSource) Word() string   { return f.word }
func (f fixedSource) Digits() [3]int { return f.digits }

func TestCancel(t *testing.T) {
	h := NewHangman("g", "u", "apple", testNow)
	effects, err := Cancel(h.Session())
	if err != nil {
		t.Fatal(err)
	}
	if !h.Session().Cancelled || h.IsOver() {
		t.Fatalf("cancelled=%v over=%v", h.Session().Cancelled, h.IsOver())
	}
	if len(effects) != 1 || effects[0].Kind != EffectSaveSession {
		t.Fatalf("effects = %+v", effects)
	}
	if h.Session().AttemptsRemaining != HangmanAttempts {
		t.Fatalf("cancel touched attempts")
	}
	if _, err := Cancel(h.Session()); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("second cancel err = %v", err)
	}
}

func TestCancelRejectsFinishedGame(t *testing.T) {
	n := NewNumberGuess("g", "u", [3]int{1, 2, 3}, testNow)
	if _, err := n.ApplyGuess(digits(1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := Cancel(n.Session()); !errors.Is(err, ErrNotCancellable) {
		t.Fatalf("err = %v", err)
	}
	if n.Session().Cancelled {
		t.Fatalf("finished game was flagged cancelled")
	}
}

func TestComputeAverage(t *testing.T) {
	if _, ok := ComputeAverage(nil); ok {
		t.Fatalf("empty input should report no data")
	}
	sessions := []Session{
		{AttemptsRemaining: 4},
		{AttemptsRemaining: 6},
		{AttemptsRemaining: 0, Over: true},
		{AttemptsRemaining: 1, Cancelled: true},
	}
	avg, ok := ComputeAverage(sessions)
	if !ok || avg != 5 {
		t.Fatalf("avg=%v ok=%v", avg, ok)
	}
	if got := FormatAverage(avg); got != "The average moves remaining is 5.00" {
		t.Fatalf("FormatAverage = %q", got)
	}
	if _, ok := ComputeAverage(sessions[2:]); ok {
		t.Fatalf("only terminal sessions should report no data")
	}
}

func TestNewAndRestore(t *testing.T) {
	src := fixedSource{word: "Teacher", digits: [3]int{9, 0, 5}}
	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			e, err := New(kind, "id-1", "owner-1", src, testNow)
			if err != nil {
				t.Fatal(err)
			}
			if e.Session().Kind != kind || e.Session().ID != "id-1" {
				t.Fatalf("session = %+v", e.Session())
			}
			if kind == KindHangman {
				_, _ = e.ApplyGuess(move("e"))
			} else {
				_, _ = e.ApplyGuess(digits(9, 5, 1))
			}

			snap := e.Snapshot()
			restored, err := Restore(snap)
			if err != nil {
				t.Fatal(err)
			}
			got := restored.Snapshot()
			if got.AttemptsRemaining != snap.AttemptsRemaining || got.Revealed != snap.Revealed ||
				len(got.History) != len(snap.History) || got.Target != snap.Target || len(got.Digits) != len(snap.Digits) {
				t.Fatalf("restore mismatch:\n got %+v\nwant %+v", got, snap)
			}

			// Snapshots are detached from the live engine.
			snap.History[0] = "tampered"
			if e.Snapshot().History[0] == "tampered" {
				t.Fatalf("snapshot shares history with engine")
			}
		})
	}
}

func TestRestoreRejectsBrokenSnapshots(t *testing.T) {
	bad := []Snapshot{
		{Session: Session{Kind: KindHangman}, Target: "apple", Revealed: "___"},
		{Session: Session{Kind: KindNumber}, Digits: []int{1, 2}},
		{Session: Session{Kind: "chess"}},
	}
	for _, s := range bad {
		if _, err := Restore(s); err == nil {
			t.Fatalf("Restore(%+v) succeeded", s)
		}
	}
	if _, err := New("chess", "", "", fixedSource{}, testNow); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("New err = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("number"); err != nil || k != KindNumber {
		t.Fatalf("ParseKind(number) = %v, %v", k, err)
	}
	if _, err := ParseKind("Hangman"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("ParseKind(Hangman) err = %v", err)
	}
}
