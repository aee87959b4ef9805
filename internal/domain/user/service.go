package user

import (
	"context"
	"io"
)

type UserService interface {
	Register(ctx context.Context, principal Principal, req RegisterUserRequest) (UserResponse, error)
	List(ctx context.Context, principal Principal, filter UserFilter) (ListUserResponse, error)
	Get(ctx context.Context, principal Principal, id string) (UserResponse, error)
	Update(ctx context.Context, principal Principal, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, principal Principal, id string) error
	UploadProfilePicture(ctx context.Context, principal Principal, id string, file io.Reader, filename string) (UserResponse, error)
}
