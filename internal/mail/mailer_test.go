package mail

import (
	"bytes"
	"context"
	"errors"
	"sensordigest/internal/models"
	"sensordigest/internal/structures"
	"sensordigest/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	messages []*gomail.Message
	err      error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, m...)
	return nil
}

func testMessage() *models.Message {
	return &models.Message{
		To:       "a@x.org",
		Subject:  "Humidity sensor weekly summary",
		HTMLBody: "<p align='center'><img src='cid:chart0'></p>",
		InlineImages: []models.InlineImage{
			{ContentID: "chart0", ContentType: "image/png", Data: []byte("\x89PNG")},
		},
	}
}

func TestBuildMessage_EmbedsInlineImages(t *testing.T) {
	m := BuildMessage("hub@x.org", testMessage())

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Content-ID: <chart0>")
	assert.Contains(t, raw, "Content-Type: image/png")
	assert.Contains(t, raw, "Subject: Humidity sensor weekly summary")
	assert.Equal(t, []string{"a@x.org"}, m.GetHeader("To"))
}

func TestSMTPMailer_Send(t *testing.T) {
	fs := &fakeSender{}
	s := &SMTPMailer{from: "hub@x.org", dialer: fs, logger: &testutil.MockLogger{}}

	require.NoError(t, s.Send(context.Background(), testMessage()))
	require.Len(t, fs.messages, 1)
	assert.Equal(t, []string{"hub@x.org"}, fs.messages[0].GetHeader("From"))
}

func TestSMTPMailer_Send_Failure(t *testing.T) {
	fs := &fakeSender{err: errors.New("dial tcp: refused")}
	s := &SMTPMailer{from: "hub@x.org", dialer: fs, logger: &testutil.MockLogger{}}

	err := s.Send(context.Background(), testMessage())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestSMTPMailer_Send_CancelledContext(t *testing.T) {
	fs := &fakeSender{}
	s := &SMTPMailer{from: "hub@x.org", dialer: fs, logger: &testutil.MockLogger{}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Send(ctx, testMessage()))
	assert.Empty(t, fs.messages)
}

func TestNewMailer_Disabled(t *testing.T) {
	logger := &testutil.MockLogger{}
	m := NewMailer(&structures.Config{}, logger)

	_, ok := m.(*LogMailer)
	require.True(t, ok)
	require.NoError(t, m.Send(context.Background(), testMessage()))
	assert.Equal(t, 2, logger.Count("info"))
}

func TestNewMailer_Enabled(t *testing.T) {
	conf := &structures.Config{Mail: structures.MailConfig{Enabled: true, Host: "smtp.x.org", Port: 587, From: "hub@x.org"}}
	m := NewMailer(conf, &testutil.MockLogger{})

	_, ok := m.(*SMTPMailer)
	assert.True(t, ok)
}
