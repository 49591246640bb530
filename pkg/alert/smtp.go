package alert

import (
	"context"

	"gopkg.in/gomail.v2"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/pkg/config"
	"github.com/ucentricid/uproject-management/pkg/logutils"
)

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func newSMTPSender() sender {
	smtpConfig := config.GetConfig().SMTP
	return &smtpSender{
		dialer: gomail.NewDialer(smtpConfig.Host, smtpConfig.Port, smtpConfig.User, smtpConfig.Password),
		from:   smtpConfig.From,
	}
}

func (s *smtpSender) SendMessageTo(_ context.Context, receiver *model.User, subject, body string) error {
	if receiver.Email == "" {
		logutils.Log.Warnf("%s does not have an email address", receiver.Name)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", receiver.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logutils.Log.Errorf("Failed to send email to %s: %v", receiver.Email, err)
		return err
	}

	logutils.Log.Infof("Sent email to %s", receiver.Email)
	return nil
}
