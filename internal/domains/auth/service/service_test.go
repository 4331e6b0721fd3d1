package service_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"travelo/config"
	"travelo/infras/jwt"
	jwtMocks "travelo/infras/jwt/mocks"
	"travelo/infras/otel/mocks"
	"travelo/internal/domains/auth/model/dto"
	"travelo/internal/domains/auth/service"
	orgMocks "travelo/internal/domains/organization/mocks"
	orgModel "travelo/internal/domains/organization/model"
	userMocks "travelo/internal/domains/user/mocks"
	userModel "travelo/internal/domains/user/model"
	"travelo/shared"
	"travelo/shared/constant"
	gDto "travelo/shared/dto"
	"travelo/shared/failure"
	"travelo/shared/password"
	repoMocks "travelo/shared/repository/mocks"
)

const (
	orgID  = "0b6a4f4e-9d4b-4c61-8f0e-6b7a1d2c3e4f"
	userID = "5b7c2f8e-3f0c-4b59-9a4d-2f6f3c1d9e10"
	email  = "ana@acme.test"
	secret = "s3cret-pass"
)

type fixture struct {
	svc        service.Auth
	users      *userMocks.MockUser
	orgs       *orgMocks.MockOrganization
	transactor *repoMocks.MockTransactor
	jwt        *jwtMocks.MockJWT
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		users:      userMocks.NewMockUser(ctrl),
		orgs:       orgMocks.NewMockOrganization(ctrl),
		transactor: repoMocks.NewMockTransactor(ctrl),
		jwt:        jwtMocks.NewMockJWT(ctrl),
	}

	f.svc = service.New(f.users, f.orgs, f.transactor, &config.Config{}, mocks.NewOtel(), f.jwt)

	return f
}

func storedUser(t *testing.T) userModel.User {
	t.Helper()

	hashed, err := password.Hash(secret)
	require.NoError(t, err)

	return userModel.User{
		ID:             userID,
		OrganizationID: orgID,
		Email:          email,
		Password:       hashed,
		Role:           constant.RoleManager,
		Active:         true,
	}
}

var pair = &jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token", TokenType: "Bearer", ExpiresIn: 900}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	var organization orgModel.Organization

	f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	f.transactor.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	f.orgs.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, org orgModel.Organization) error {
		assert.Equal(t, "Acme", org.Name)

		organization = org

		return nil
	})
	f.users.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user userModel.User) error {
		assert.Equal(t, organization.ID, user.OrganizationID)
		assert.Equal(t, constant.RoleCompanyAdmin, user.Role)
		assert.NoError(t, password.Verify(secret, user.Password))

		return nil
	})
	f.jwt.EXPECT().GenerateTokenPair(gomock.Any()).DoAndReturn(func(subject jwt.Subject) (*jwt.TokenPair, error) {
		assert.Equal(t, organization.ID, subject.OrganizationID)
		assert.Equal(t, constant.RoleCompanyAdmin, subject.Role)

		return pair, nil
	})

	res, err := f.svc.Register(context.Background(), dto.RegisterRequest{OrganizationName: "Acme", Email: "Ana@acme.test", Password: secret})

	require.NoError(t, err)
	assert.Equal(t, organization.ID, res.OrganizationID)
	assert.NotEmpty(t, res.UserID)
	assert.Equal(t, "access-token", res.AccessToken)
}

func TestRegister_EmailTaken(t *testing.T) {
	f := newFixture(t)

	f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{OrganizationName: "Acme", Email: email, Password: secret})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
}

func TestRegister_RollsBackOrganization(t *testing.T) {
	f := newFixture(t)

	f.users.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	f.transactor.EXPECT().WithinTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	f.orgs.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	f.users.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := f.svc.Register(context.Background(), dto.RegisterRequest{OrganizationName: "Acme", Email: email, Password: secret})

	require.ErrorIs(t, err, assert.AnError)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(f fixture, user userModel.User)
		wantCode  int
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "ANA@acme.test", Password: secret},
			setupMock: func(f fixture, user userModel.User) {
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (userModel.User, error) {
						_, args := filter.GetWhereClause()
						assert.Equal(t, email, args[userModel.FieldEmail])

						return user, nil
					})
				f.jwt.EXPECT().GenerateTokenPair(jwt.Subject{
					UserID:         userID,
					OrganizationID: orgID,
					Email:          email,
					Role:           constant.RoleManager,
				}).Return(pair, nil)
				f.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Contains(t, fields, userModel.FieldLastLogin)

						return nil
					})
			},
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@acme.test", Password: secret},
			setupMock: func(f fixture, _ userModel.User) {
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: email, Password: "wrong-password"},
			setupMock: func(f fixture, user userModel.User) {
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "deactivated user",
			req:  dto.LoginRequest{Email: email, Password: secret},
			setupMock: func(f fixture, user userModel.User) {
				user.Active = false

				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "last login failure does not block",
			req:  dto.LoginRequest{Email: email, Password: secret},
			setupMock: func(f fixture, user userModel.User) {
				f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				f.jwt.EXPECT().GenerateTokenPair(gomock.Any()).Return(pair, nil)
				f.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f, storedUser(t))

			res, err := f.svc.Login(context.Background(), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-token", res.AccessToken)
			assert.Equal(t, "refresh-token", res.RefreshToken)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	t.Run("uses the current role", func(t *testing.T) {
		f := newFixture(t)

		user := storedUser(t)
		user.Role = constant.RoleCompanyAdmin

		f.jwt.EXPECT().ValidateToken("refresh-token", jwt.RefreshToken).
			Return(&jwt.Claims{UserID: userID, OrganizationID: orgID, Role: constant.RoleManager}, nil)
		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
		f.jwt.EXPECT().GenerateTokenPair(gomock.Any()).DoAndReturn(func(subject jwt.Subject) (*jwt.TokenPair, error) {
			assert.Equal(t, constant.RoleCompanyAdmin, subject.Role)

			return pair, nil
		})

		res, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh-token"})

		require.NoError(t, err)
		assert.Equal(t, "access-token", res.AccessToken)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newFixture(t)

		f.jwt.EXPECT().ValidateToken("expired", jwt.RefreshToken).Return(nil, jwt.ErrExpiredToken)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "expired"})

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("deactivated since issue", func(t *testing.T) {
		f := newFixture(t)

		user := storedUser(t)
		user.Active = false

		f.jwt.EXPECT().ValidateToken("refresh-token", jwt.RefreshToken).Return(&jwt.Claims{UserID: userID}, nil)
		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh-token"})

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := shared.WithActor(context.Background(), shared.Actor{UserID: userID, OrganizationID: orgID, Role: constant.RoleManager})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedUser(t), nil)
		f.users.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				hashed, ok := fields[userModel.FieldPassword].(string)
				require.True(t, ok)
				assert.NoError(t, password.Verify("n3w-secret-pass", hashed))
				assert.Equal(t, userID, fields[constant.FieldModifiedBy])

				return nil
			})

		err := f.svc.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: secret, NewPassword: "n3w-secret-pass"})

		require.NoError(t, err)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFixture(t)

		f.users.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedUser(t), nil)

		err := f.svc.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "n3w-secret-pass"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
