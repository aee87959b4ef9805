package message

import (
	"context"
	"errors"
	"testing"

	"github.com/securepass-ai/securepass-backend-go/internal/domain/company"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/message"
	"github.com/securepass-ai/securepass-backend-go/internal/domain/user"
	"github.com/securepass-ai/securepass-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mails []message.ReplyEmail
	err   error
}

func (f *fakeNotifier) QueueReplyEmail(_ context.Context, mail message.ReplyEmail) error {
	f.mails = append(f.mails, mail)
	return f.err
}

type messageFixture struct {
	service  message.MessageService
	notifier *fakeNotifier
	sender   user.Principal
	admin    user.Principal
	foreign  user.Principal
}

func newMessageFixture(t *testing.T) messageFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	acme, err := store.Companies().Create(ctx, company.Company{Name: "Acme"})
	require.NoError(t, err)
	globex, err := store.Companies().Create(ctx, company.Company{Name: "Globex"})
	require.NoError(t, err)
	u, err := store.Users().Create(ctx, user.User{CompanyID: acme.ID, FirstName: "Ada", LastName: "Lovelace", UserCode: "EMP001", Email: "ada@acme.test"})
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	return messageFixture{
		service:  NewMessageService(store.Messages(), notifier),
		notifier: notifier,
		sender:   user.Principal{SubjectID: u.ID, Role: user.RoleUser, CompanyID: &acme.ID},
		admin:    user.Principal{SubjectID: "admin-1", Role: user.RoleAdmin, CompanyID: &acme.ID},
		foreign:  user.Principal{SubjectID: "admin-2", Role: user.RoleAdmin, CompanyID: &globex.ID},
	}
}

func TestMessageService_ReplyFlow(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	created, err := f.service.Create(ctx, f.sender, message.CreateMessageRequest{Message: "The lab door does not open"})
	require.NoError(t, err)
	assert.Equal(t, string(message.StatusUnread), created.Status)
	assert.Equal(t, string(message.UserStatusNone), created.UserStatus)

	list, err := f.service.List(ctx, f.admin, message.MessageFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, int64(1), list.UnreadCount)

	replied, err := f.service.Reply(ctx, f.admin, created.ID, message.ReplyRequest{Reply: "Fixed, try again"})
	require.NoError(t, err)
	require.NotNil(t, replied.Reply)
	assert.Equal(t, string(message.StatusRead), replied.Status)
	assert.Equal(t, string(message.UserStatusUnread), replied.UserStatus)

	require.Len(t, f.notifier.mails, 1)
	assert.Equal(t, "ada@acme.test", f.notifier.mails[0].To)
	assert.Equal(t, "Ada Lovelace", f.notifier.mails[0].UserName)
	assert.Equal(t, "The lab door does not open", f.notifier.mails[0].OriginalMessage)

	read, err := f.service.MarkReplyRead(ctx, f.sender, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(message.UserStatusRead), read.UserStatus)

	own, err := f.service.ListOwn(ctx, f.sender, message.MessageFilter{})
	require.NoError(t, err)
	require.Len(t, own.Messages, 1)
	assert.Equal(t, "Fixed, try again", *own.Messages[0].Reply)
}

func TestMessageService_ReplySurvivesEmailFailure(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)
	f.notifier.err = errors.New("smtp down")

	created, err := f.service.Create(ctx, f.sender, message.CreateMessageRequest{Message: "hello"})
	require.NoError(t, err)

	_, err = f.service.Reply(ctx, f.admin, created.ID, message.ReplyRequest{Reply: "hi"})
	assert.NoError(t, err)
}

func TestMessageService_ToggleRead(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	created, err := f.service.Create(ctx, f.sender, message.CreateMessageRequest{Message: "hello"})
	require.NoError(t, err)

	toggled, err := f.service.ToggleRead(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(message.StatusRead), toggled.Status)

	toggled, err = f.service.ToggleRead(ctx, f.admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(message.StatusUnread), toggled.Status)
}

func TestMessageService_Errors(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	created, err := f.service.Create(ctx, f.sender, message.CreateMessageRequest{Message: "hello"})
	require.NoError(t, err)

	_, err = f.service.MarkReplyRead(ctx, f.sender, created.ID)
	assert.ErrorIs(t, err, message.ErrNoReplyToRead)

	_, err = f.service.ToggleRead(ctx, f.foreign, created.ID)
	assert.ErrorIs(t, err, message.ErrMessageNotFound)

	_, err = f.service.List(ctx, f.sender, message.MessageFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.service.Create(ctx, f.admin, message.CreateMessageRequest{Message: "hello"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.service.Create(ctx, f.sender, message.CreateMessageRequest{Message: "  "})
	assert.Error(t, err)
}
