package alert

import (
	"context"
	"fmt"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/pkg/tracker"
)

type Mgr struct {
	sender sender
}

// NewMgr returns the notification manager backed by SMTP.
func NewMgr() Interface {
	return &Mgr{sender: newSMTPSender()}
}

func (m *Mgr) ReplyPosted(ctx context.Context, receiver *model.User, replier, projectName, content string) error {
	subject := fmt.Sprintf("New reply in %s", projectName)
	body := fmt.Sprintf("%s replied to your comment in project %s:\n\n%s\n",
		replier, projectName, tracker.DisplayText(content))
	return m.sender.SendMessageTo(ctx, receiver, subject, body)
}

func (m *Mgr) Mentioned(ctx context.Context, receiver *model.User, author, projectName, content string) error {
	subject := fmt.Sprintf("You were mentioned in %s", projectName)
	body := fmt.Sprintf("%s mentioned you in project %s:\n\n%s\n",
		author, projectName, tracker.DisplayText(content))
	return m.sender.SendMessageTo(ctx, receiver, subject, body)
}
