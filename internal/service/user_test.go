package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketapi/internal/model"
	"marketapi/internal/repository"
	repoMocks "marketapi/internal/repository/mocks"
)

func newUserService(mRepo *repoMocks.MockUserRepository, pub *recordingPublisher) UserService {
	return NewUserService(mRepo, plainHasher{}, fakeIssuer{}, pub, "user-events", zerolog.Nop())
}

func echoUser(_ context.Context, u *model.User) *model.User { return u }

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "secret1", Role: "seller"}

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		pub := &recordingPublisher{}
		mRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Password == "hashed:secret1" && u.Role == model.RoleSeller && u.Email == "alice@example.com"
		})).Return(echoUser, nil)

		res, err := newUserService(mRepo, pub).Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "token-for-"+res.User.ID, res.Token)
		assert.Equal(t, []string{"USER_REGISTERED:" + res.User.ID + ":alice@example.com:SELLER"}, pub.payloads())
		mRepo.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		pub := &recordingPublisher{}
		mRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(true, nil)

		_, err := newUserService(mRepo, pub).Register(ctx, in)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, KindConflict, e.Kind)
		assert.Equal(t, "Email already exists", e.Message)
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, pub.got)
	})

	t.Run("email taken by a concurrent insert", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)

		_, err := newUserService(mRepo, &recordingPublisher{}).Register(ctx, in)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("unknown role", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		bad := in
		bad.Role = "ADMIN"

		_, err := newUserService(mRepo, &recordingPublisher{}).Register(ctx, bad)
		assert.Equal(t, KindBadRequest, KindOf(err))
		mRepo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
	})

	t.Run("broker failure does not fail registration", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		pub := &recordingPublisher{err: errors.New("broker down")}
		mRepo.On("ExistsByEmail", ctx, "alice@example.com").Return(false, nil)
		mRepo.On("Create", ctx, mock.Anything).Return(echoUser, nil)

		res, err := newUserService(mRepo, pub).Register(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
	})
}

func TestUserService_Login_SameErrorForBothFailures(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockUserRepository)
	mRepo.On("FindByEmail", ctx, "bob@example.com").
		Return(&model.User{ID: "u-2", Email: "bob@example.com", Password: "hashed:right", Role: model.RoleClient}, nil)
	mRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)
	svc := newUserService(mRepo, &recordingPublisher{})

	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "wrong"})
	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, KindBadRequest, KindOf(wrongPassword))
	assert.Equal(t, KindBadRequest, KindOf(unknownEmail))
	assert.Equal(t, "Invalid email or password", wrongPassword.Error())

	res, err := svc.Login(ctx, LoginInput{Email: "BOB@example.com", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "token-for-u-2", res.Token)
}

func TestUserService_UpdateMe(t *testing.T) {
	ctx := context.Background()
	me := Actor{ID: "u-1", Role: model.RoleClient}
	stored := func() *model.User {
		avatar := "/uploads/old.png"
		return &model.User{ID: "u-1", Name: "Alice", Email: "a@example.com", Role: model.RoleClient, Avatar: &avatar}
	}

	tests := []struct {
		name       string
		body       string
		wantName   string
		wantAvatar *string
	}{
		{"absent fields are kept", `{}`, "Alice", ptr("/uploads/old.png")},
		{"explicit null avatar clears it", `{"avatar":null}`, "Alice", nil},
		{"new avatar replaces it", `{"avatar":"/uploads/new.png"}`, "Alice", ptr("/uploads/new.png")},
		{"blank name is ignored", `{"name":"   "}`, "Alice", ptr("/uploads/old.png")},
		{"name replaced", `{"name":"Alicia"}`, "Alicia", ptr("/uploads/old.png")},
		{"null name is ignored", `{"name":null}`, "Alice", ptr("/uploads/old.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			pub := &recordingPublisher{}
			mRepo.On("FindByID", ctx, "u-1").Return(stored(), nil)
			mRepo.On("Update", ctx, mock.Anything).Return(echoUser, nil)

			var in UpdateUserInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))

			u, err := newUserService(mRepo, pub).UpdateMe(ctx, me, in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, u.Name)
			assert.Equal(t, tt.wantAvatar, u.Avatar)
			assert.Equal(t, []string{"USER_UPDATED:u-1:u-1"}, pub.payloads())
		})
	}
}

func TestUserService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	me := Actor{ID: "u-1"}

	t.Run("get missing", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByID", ctx, "u-9").Return(nil, repository.ErrNotFound)

		_, err := newUserService(mRepo, &recordingPublisher{}).Get(ctx, "u-9")
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("get store failure", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByID", ctx, "u-1").Return(nil, errors.New("timeout"))

		_, err := newUserService(mRepo, &recordingPublisher{}).Me(ctx, me)
		assert.Equal(t, KindInternal, KindOf(err))
	})

	t.Run("delete me", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		pub := &recordingPublisher{}
		mRepo.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1"}, nil)
		mRepo.On("Delete", ctx, "u-1").Return(nil)

		require.NoError(t, newUserService(mRepo, pub).DeleteMe(ctx, me))
		assert.Equal(t, []string{"USER_DELETED:u-1:u-1"}, pub.payloads())
		mRepo.AssertExpectations(t)
	})
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize("u-1", "u-1"))
	assert.Equal(t, KindUnauthorized, KindOf(Authorize("u-1", "u-2")))
	assert.Equal(t, KindUnauthorized, KindOf(Authorize("", "")))
}

func TestError(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Internal("Failed to fetch product", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to fetch product: pq: connection reset", err.Error())
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, "not_found", KindNotFound.String())
}
