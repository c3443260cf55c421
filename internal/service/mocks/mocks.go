package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

type MockFeesClient struct {
	mock.Mock
}

func NewMockFeesClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFeesClient {
	m := &MockFeesClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockFeesClient) OpenSession(
	ctx context.Context,
	req model.PaymentRequest,
) (*model.PaymentBreakdown, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentBreakdown), args.Error(1)
}

func (m *MockFeesClient) SessionStatus(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

type MockGatewayClient struct {
	mock.Mock
}

func NewMockGatewayClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGatewayClient {
	m := &MockGatewayClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockGatewayClient) Confirm(
	ctx context.Context,
	handle string,
) (model.GatewayConfirmation, error) {
	args := m.Called(ctx, handle)
	return args.Get(0).(model.GatewayConfirmation), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func NewMockReconciler(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReconciler {
	m := &MockReconciler{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockReconciler) Resolve(
	ctx context.Context,
	sessionID string,
	submittedAt time.Time,
) (model.Outcome, error) {
	args := m.Called(ctx, sessionID, submittedAt)
	return args.Get(0).(model.Outcome), args.Error(1)
}

type MockFinalizedSender struct {
	mock.Mock
}

func NewMockFinalizedSender(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFinalizedSender {
	m := &MockFinalizedSender{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockFinalizedSender) SendSettlementFinalized(
	ctx context.Context,
	event model.FinalizedEvent,
) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
