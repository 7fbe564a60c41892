package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/robalobadob/guessgames/internal/game"
	"github.com/robalobadob/guessgames/internal/store"
)

type sent struct{ to, subject, body string }

type fakeMailer struct {
	out  []sent
	fail map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.fail[to] {
		return errors.New("mailbox unavailable")
	}
	f.out = append(f.out, sent{to, subject, body})
	return nil
}

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestReminderRun(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ann, _ := st.CreateUser(ctx, "ann", "ann@example.com")
	bob, _ := st.CreateUser(ctx, "bob", "bob@example.com")
	cid, _ := st.CreateUser(ctx, "cid", "")
	dee, _ := st.CreateUser(ctx, "dee", "dee@example.com")
	eve, _ := st.CreateUser(ctx, "eve", "eve@example.com")

	// ann: two live games of different kinds, one reminder.
	_ = st.CreateGame(ctx, game.NewHangman("h1", ann.ID, "apple", now).Snapshot())
	_ = st.CreateGame(ctx, game.NewNumberGuess("n1", ann.ID, [3]int{1, 2, 3}, now).Snapshot())
	// bob: only a cancelled game.
	_ = st.CreateGame(ctx, game.NewHangman("h2", bob.ID, "apple", now).Snapshot())
	_ = st.UpdateGame(ctx, "h2", func(e game.Engine) ([]game.Effect, error) { return game.Cancel(e.Session()) })
	// cid: live game but no email.
	_ = st.CreateGame(ctx, game.NewHangman("h3", cid.ID, "apple", now).Snapshot())
	// dee: live game, mailbox fails.
	_ = st.CreateGame(ctx, game.NewNumberGuess("n2", dee.ID, [3]int{4, 5, 6}, now).Snapshot())
	// eve: live game.
	_ = st.CreateGame(ctx, game.NewHangman("h4", eve.ID, "flower", now).Snapshot())

	m := &fakeMailer{fail: map[string]bool{"dee@example.com": true}}
	rep, err := (&Reminder{Store: st, Mailer: m}).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rep != (Report{Eligible: 3, Sent: 2, Failed: 1}) {
		t.Fatalf("report = %+v", rep)
	}
	if len(m.out) != 2 || m.out[0].to != "ann@example.com" || m.out[1].to != "eve@example.com" {
		t.Fatalf("sent = %+v", m.out)
	}
	want := sent{"ann@example.com", "This is a reminder!", "Hello ann, you have a game in progress. Come back and finish it!"}
	if m.out[0] != want {
		t.Fatalf("mail = %+v", m.out[0])
	}
}

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESSend(t *testing.T) {
	api := &fakeSES{}
	m := newSES(api, "games@example.com", "Guessing Games")
	if err := m.Send(context.Background(), "ann@example.com", "subj", "body"); err != nil {
		t.Fatal(err)
	}
	in := api.in
	if aws.ToString(in.FromEmailAddress) != "Guessing Games <games@example.com>" {
		t.Fatalf("from = %q", aws.ToString(in.FromEmailAddress))
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "ann@example.com" {
		t.Fatalf("to = %v", in.Destination.ToAddresses)
	}
	msg := in.Content.Simple
	if aws.ToString(msg.Subject.Data) != "subj" || aws.ToString(msg.Body.Text.Data) != "body" || msg.Body.Html != nil {
		t.Fatalf("content = %+v", msg)
	}

	api.err = errors.New("throttled")
	if err := m.Send(context.Background(), "ann@example.com", "s", "b"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSESFromWithoutName(t *testing.T) {
	if m := newSES(&fakeSES{}, "games@example.com", ""); m.from != "games@example.com" {
		t.Fatalf("from = %q", m.from)
	}
}
