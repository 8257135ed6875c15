package application

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chilisites/postsapi/notification/domain"
	"github.com/chilisites/postsapi/notification/templates"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg domain.Message) (*domain.SendResult, error) {
	args := m.Called(ctx, msg)
	if res := args.Get(0); res != nil {
		return res.(*domain.SendResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// blockingSender waits for the context to expire.
type blockingSender struct{}

func (blockingSender) Send(ctx context.Context, _ domain.Message) (*domain.SendResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("CLT", -3*60*60))

func newTestStore(t *testing.T) domain.TemplateStore {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "thanks_for_contact.html",
		[]byte("<p>Hola {{name}} ({{email}}), tema: {{category}} {{unknown}}</p>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "new_contact.html",
		[]byte("{{name}}|{{email}}|{{phone}}|{{category}}|{{message}}|{{date}}"), 0o644))
	return templates.NewFSStore(fs)
}

func newTestDispatcher(t *testing.T, sender domain.Sender) *Dispatcher {
	t.Helper()
	return NewDispatcher(newTestStore(t), sender, Config{
		From:               "ChiliSites <contacto@chilisites.com>",
		InternalRecipients: []string{"team@chilisites.com", "ops@chilisites.com"},
		SendTimeout:        time.Second,
	}, WithClock(func() time.Time { return fixedNow }))
}

func internalFields() domain.Fields {
	return domain.Fields{
		"name":     "Ana",
		"email":    "ana@example.com",
		"phone":    "+56 9 1234 5678",
		"category": "web",
		"message":  "Necesito un sitio",
	}
}

func TestDispatch_Thanks(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, domain.Message{
		From:    "ChiliSites <contacto@chilisites.com>",
		To:      []string{"ana@example.com"},
		Subject: "¡Gracias por contactarnos!",
		HTML:    "<p>Hola Ana (ana@example.com), tema: — {{unknown}}</p>",
	}).Return(&domain.SendResult{ID: "msg-1"}, nil).Once()

	d := newTestDispatcher(t, sender)
	res, err := d.Dispatch(context.Background(), domain.KindThanks, domain.Fields{
		"name":  "Ana",
		"email": "ana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", res.ID)
	sender.AssertExpectations(t)
}

func TestDispatch_ThanksDefaultsName(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg domain.Message) bool {
		return msg.HTML == "<p>Hola  (ana@example.com), tema: diseño {{unknown}}</p>"
	})).Return(&domain.SendResult{ID: "msg-2"}, nil).Once()

	d := newTestDispatcher(t, sender)
	_, err := d.Dispatch(context.Background(), domain.KindThanks, domain.Fields{
		"email":    "ana@example.com",
		"category": "diseño",
	})

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestDispatch_Internal(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, domain.Message{
		From:    "ChiliSites <contacto@chilisites.com>",
		To:      []string{"team@chilisites.com", "ops@chilisites.com"},
		Subject: "Nuevo contacto desde chilisites.com",
		HTML:    "Ana|ana@example.com|+56 9 1234 5678|web|Necesito un sitio|2024-03-05 17:07:09",
	}).Return(&domain.SendResult{ID: "msg-3"}, nil).Once()

	d := newTestDispatcher(t, sender)
	res, err := d.Dispatch(context.Background(), domain.KindInternal, internalFields())

	require.NoError(t, err)
	assert.Equal(t, "msg-3", res.ID)
	sender.AssertExpectations(t)
}

func TestDispatch_EscapesValues(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "comparison operators",
			message: "if a<b and c>d",
			want:    "if a&lt;b and c&gt;d",
		},
		{
			name:    "angle bracket address",
			message: "Contact me at <ana@example.com>",
			want:    "Contact me at &lt;ana@example.com&gt;",
		},
		{
			name:    "markup",
			message: `<script>alert("x")</script>Hola & adiós`,
			want:    "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;Hola &amp; adiós",
		},
		{
			name:    "empty element",
			message: "<b></b>",
			want:    "&lt;b&gt;&lt;/b&gt;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(mockSender)
			sender.On("Send", mock.Anything, mock.Anything).Return(&domain.SendResult{ID: "x"}, nil).Once()

			fields := internalFields()
			fields["message"] = tt.message

			d := newTestDispatcher(t, sender)
			_, err := d.Dispatch(context.Background(), domain.KindInternal, fields)
			require.NoError(t, err)

			msg := sender.Calls[0].Arguments.Get(1).(domain.Message)
			assert.Equal(t, "Ana|ana@example.com|+56 9 1234 5678|web|"+tt.want+"|2024-03-05 17:07:09", msg.HTML)
		})
	}
}

func TestDispatch_LogsFinalState(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	sender := new(mockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(&domain.SendResult{ID: "msg-1"}, nil).Once()
	d := newTestDispatcher(t, sender)

	_, err := d.Dispatch(context.Background(), domain.KindInternal, internalFields())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"state":"succeeded"`)

	buf.Reset()
	fields := internalFields()
	delete(fields, "phone")
	_, err = d.Dispatch(context.Background(), domain.KindInternal, fields)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"state":"failed"`)
	assert.Contains(t, buf.String(), `"stage":"template_loaded"`)
}

func TestDispatch_InternalMissingField(t *testing.T) {
	for _, field := range []string{"name", "email", "phone", "category", "message"} {
		t.Run(field, func(t *testing.T) {
			sender := new(mockSender)
			fields := internalFields()
			delete(fields, field)

			d := newTestDispatcher(t, sender)
			res, err := d.Dispatch(context.Background(), domain.KindInternal, fields)

			assert.Nil(t, res)
			var de *domain.DispatchError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindInternal, de.Kind)
			assert.Equal(t, domain.StageTemplateLoaded, de.Stage)
			assert.Contains(t, de.Reason, field)
			sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatch_ThanksRecipientValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields domain.Fields
	}{
		{name: "missing email", fields: domain.Fields{"name": "Ana"}},
		{name: "blank email", fields: domain.Fields{"email": "   "}},
		{name: "malformed email", fields: domain.Fields{"email": "not-an-address"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(mockSender)
			d := newTestDispatcher(t, sender)

			_, err := d.Dispatch(context.Background(), domain.KindThanks, tt.fields)

			var de *domain.DispatchError
			require.ErrorAs(t, err, &de)
			sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestDispatch_TemplateUnavailable(t *testing.T) {
	sender := new(mockSender)
	d := NewDispatcher(templates.NewFSStore(afero.NewMemMapFs()), sender, Config{
		InternalRecipients: []string{"team@chilisites.com"},
	})

	_, err := d.Dispatch(context.Background(), domain.KindInternal, internalFields())

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.StageIdle, de.Stage)
	assert.Equal(t, "could not send email: template unavailable", err.Error())
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_UnknownKind(t *testing.T) {
	d := newTestDispatcher(t, new(mockSender))

	_, err := d.Dispatch(context.Background(), domain.Kind("newsletter"), domain.Fields{})

	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestDispatch_NoInternalRecipients(t *testing.T) {
	sender := new(mockSender)
	d := NewDispatcher(newTestStore(t), sender, Config{})

	_, err := d.Dispatch(context.Background(), domain.KindInternal, internalFields())

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatch_ProviderRejects(t *testing.T) {
	cause := errors.New("422 invalid from address")
	sender := new(mockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil, cause).Once()

	d := newTestDispatcher(t, sender)
	_, err := d.Dispatch(context.Background(), domain.KindInternal, internalFields())

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.StageSendAttempted, de.Stage)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "422", "provider details stay in logs")
}

func TestDispatch_Timeout(t *testing.T) {
	d := NewDispatcher(newTestStore(t), blockingSender{}, Config{
		InternalRecipients: []string{"team@chilisites.com"},
		SendTimeout:        20 * time.Millisecond,
	})

	start := time.Now()
	_, err := d.Dispatch(context.Background(), domain.KindInternal, internalFields())

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "email provider timed out", de.Reason)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewDispatcher_DefaultTimeout(t *testing.T) {
	d := NewDispatcher(nil, nil, Config{})
	assert.Equal(t, DefaultSendTimeout, d.cfg.SendTimeout)
}
