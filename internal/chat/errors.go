package chat

import "github.com/matheus3301/livechat/internal/apperr"

var (
	ErrNotSignedIn   = apperr.Unauthorized("not signed in")
	ErrNoActiveChat  = apperr.FailedPrecondition("no chat selected")
	ErrEmptyMessage  = apperr.InvalidArg("message is empty")
	ErrBadAttachment = apperr.InvalidArg("unsupported attachment type")

	ErrUsernameTaken = apperr.AlreadyExists("username is already taken")
	ErrWrongPassword = apperr.InvalidArg("incorrect current password")

	ErrUserNotFound   = apperr.NotFound("user not found")
	ErrGroupNotFound  = apperr.NotFound("group not found")
	ErrStatusNotFound = apperr.NotFound("status not found")
	ErrNotMember      = apperr.InvalidArg("user is not a member of the group")
	ErrSelfRequest    = apperr.InvalidArg("cannot send a friend request to yourself")

	ErrNotAdmin            = apperr.Forbidden("only group admins can do that")
	ErrCannotRemoveCreator = apperr.Forbidden("the group creator cannot be removed")
	ErrCannotDemoteCreator = apperr.Forbidden("the group creator cannot be demoted")
	ErrCreatorMustPromote  = apperr.FailedPrecondition("promote another member to admin before leaving the group you created")

	ErrCallNeedsDirectChat = apperr.FailedPrecondition("calls are only available in one-to-one chats")
	ErrCallInProgress      = apperr.FailedPrecondition("a call is already in progress")
	ErrNoActiveCall        = apperr.FailedPrecondition("no call in progress")
)
