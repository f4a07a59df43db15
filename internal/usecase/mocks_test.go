package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/entity"
	"github.com/rocketscienceinc/hotseat-tictactoe/internal/tictactoe"
)

type mockSessionRepo struct {
	mock.Mock
}

func newMockSessionRepo(t mock.TestingT) *mockSessionRepo {
	m := &mockSessionRepo{}
	m.Test(t)
	return m
}

func (that *mockSessionRepo) Save(ctx context.Context, session *entity.Session) error {
	args := that.Called(ctx, session)
	return args.Error(0)
}

func (that *mockSessionRepo) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)

	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (that *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func newMockPublisher(t mock.TestingT) *mockPublisher {
	m := &mockPublisher{}
	m.Test(t)
	return m
}

func (that *mockPublisher) Publish(sessionID string, event tictactoe.Event) {
	that.Called(sessionID, event)
}
