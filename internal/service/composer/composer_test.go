package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZIon2025-x/linku-settlement/internal/model"
)

func TestComposerCompose(t *testing.T) {
	t.Parallel()

	sut := NewComposer()

	tests := []struct {
		name          string
		requested     model.PaymentRequest
		pointsBalance int64

		wantErr bool
		want    model.PaymentRequest
	}{
		{
			name: "ok/gateway method passes through",
			requested: model.PaymentRequest{
				TaskID:       42,
				CouponCode:   "save10",
				ChargeMethod: model.ChargeMethodGateway,
			},
			pointsBalance: 1000,
			want: model.PaymentRequest{
				TaskID:       42,
				CouponCode:   "SAVE10",
				ChargeMethod: model.ChargeMethodGateway,
			},
		},
		{
			name: "ok/coupon is trimmed and uppercased",
			requested: model.PaymentRequest{
				TaskID:       7,
				CouponCode:   "  newuser  ",
				ChargeMethod: model.ChargeMethodGateway,
			},
			pointsBalance: 0,
			want: model.PaymentRequest{
				TaskID:       7,
				CouponCode:   "NEWUSER",
				ChargeMethod: model.ChargeMethodGateway,
			},
		},
		{
			name: "ok/points clamped to balance",
			requested: model.PaymentRequest{
				TaskID:          42,
				PointsRequested: 5000,
				ChargeMethod:    model.ChargeMethodMixed,
			},
			pointsBalance: 300,
			want: model.PaymentRequest{
				TaskID:          42,
				PointsRequested: 300,
				ChargeMethod:    model.ChargeMethodMixed,
			},
		},
		{
			name: "ok/negative points clamped to zero then rejected for points method",
			requested: model.PaymentRequest{
				TaskID:          42,
				PointsRequested: -10,
				ChargeMethod:    model.ChargeMethodPoints,
			},
			pointsBalance: 300,
			wantErr:       true,
		},
		{
			name: "validation/task id required",
			requested: model.PaymentRequest{
				TaskID:       0,
				ChargeMethod: model.ChargeMethodGateway,
			},
			pointsBalance: 0,
			wantErr:       true,
		},
		{
			name: "validation/points method requires points after clamping",
			requested: model.PaymentRequest{
				TaskID:          42,
				PointsRequested: 100,
				ChargeMethod:    model.ChargeMethodPoints,
			},
			pointsBalance: 0,
			wantErr:       true,
		},
		{
			name: "validation/gateway method must not carry points",
			requested: model.PaymentRequest{
				TaskID:          42,
				PointsRequested: 100,
				ChargeMethod:    model.ChargeMethodGateway,
			},
			pointsBalance: 100,
			wantErr:       true,
		},
		{
			name: "validation/unknown charge method",
			requested: model.PaymentRequest{
				TaskID:       42,
				ChargeMethod: model.ChargeMethod("CHARGE_METHOD_BARTER"),
			},
			pointsBalance: 0,
			wantErr:       true,
		},
		{
			name: "validation/negative balance",
			requested: model.PaymentRequest{
				TaskID:       42,
				ChargeMethod: model.ChargeMethodGateway,
			},
			pointsBalance: -1,
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := sut.Compose(tt.requested, tt.pointsBalance)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrInvalidRequest)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComposerComposeNeverExceedsBalance(t *testing.T) {
	t.Parallel()

	sut := NewComposer()

	for _, requested := range []int64{1, 299, 300, 301, 1 << 40} {
		got, err := sut.Compose(model.PaymentRequest{
			TaskID:          1,
			PointsRequested: requested,
			ChargeMethod:    model.ChargeMethodMixed,
		}, 300)

		require.NoError(t, err)
		assert.LessOrEqual(t, got.PointsRequested, int64(300))
		assert.GreaterOrEqual(t, got.PointsRequested, int64(0))
	}
}
