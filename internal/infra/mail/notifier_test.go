package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/infra/integration/whatsapp"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

type fakeWhatsApp struct {
	inputs []whatsapp.SendMessageInput
	err    error
}

func (f *fakeWhatsApp) SendMessage(_ context.Context, in whatsapp.SendMessageInput) error {
	f.inputs = append(f.inputs, in)
	return f.err
}

func newTestNotifier(d *fakeDialer, wa *fakeWhatsApp) *Notifier {
	email := NewEmailSender("smtp.test", 587, "user", "pass", "crm@imersao.test")
	email.dialer = d
	return NewNotifier(email, NewWhatsAppSender(wa, "lead_realocado"))
}

func TestNotifier_NotifyReassignment(t *testing.T) {
	d := &fakeDialer{}
	wa := &fakeWhatsApp{}
	n := newTestNotifier(d, wa)

	seller := entity.TeamMember{Name: "Bruno", Email: "bruno@imersao.test", Phone: "(11) 98888-7777"}
	lead := entity.Lead{Name: "Maria", Phone: "11977776666", Status: entity.StatusNovo}

	require.NoError(t, n.NotifyReassignment(context.Background(), seller, lead, "Ana"))

	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"bruno@imersao.test"}, d.sent[0].GetHeader("To"))
	var body bytes.Buffer
	_, err := d.sent[0].WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "Maria")

	require.Len(t, wa.inputs, 1)
	assert.Equal(t, "5511988887777", wa.inputs[0].PhoneNumber)
	assert.Equal(t, []string{"Bruno", "Maria", "11977776666"}, wa.inputs[0].Parameters)
}

func TestNotifier_SkipsMissingChannels(t *testing.T) {
	d := &fakeDialer{}
	wa := &fakeWhatsApp{}
	n := newTestNotifier(d, wa)

	err := n.NotifyReassignment(context.Background(), entity.TeamMember{Name: "Bruno"}, entity.Lead{Name: "Maria"}, "")
	require.NoError(t, err)
	assert.Empty(t, d.sent)
	assert.Empty(t, wa.inputs)
}

func TestNotifier_JoinsErrors(t *testing.T) {
	d := &fakeDialer{err: errors.New("smtp down")}
	wa := &fakeWhatsApp{err: errors.New("api down")}
	n := newTestNotifier(d, wa)

	seller := entity.TeamMember{Name: "Bruno", Email: "bruno@imersao.test", Phone: "11988887777"}
	err := n.NotifyReassignment(context.Background(), seller, entity.Lead{Name: "Maria"}, "")
	assert.ErrorContains(t, err, "smtp down")
	assert.ErrorContains(t, err, "api down")
}

func TestInternationalPhone(t *testing.T) {
	assert.Equal(t, "5511988887777", InternationalPhone("(11) 98888-7777"))
	assert.Equal(t, "5511988887777", InternationalPhone("+55 11 98888-7777"))
	assert.Equal(t, "551133334444", InternationalPhone("11 3333-4444"))
}
