// Package alert sends best-effort email notifications for discussion
// activity. Failures are logged and swallowed, they never fail the
// request that triggered them.
package alert

import (
	"context"

	"github.com/ucentricid/uproject-management/dao/model"
)

// Interface covers the notification scenarios:
//  1. someone replied to your discussion post
//  2. someone @mentioned you in a post
type Interface interface {
	ReplyPosted(ctx context.Context, receiver *model.User, replier, projectName, content string) error
	Mentioned(ctx context.Context, receiver *model.User, author, projectName, content string) error
}

// sender is the transport an alert implementation delivers through.
type sender interface {
	SendMessageTo(ctx context.Context, receiver *model.User, subject, body string) error
}
