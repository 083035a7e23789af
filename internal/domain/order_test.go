package domain

import (
	"errors"
	"testing"
)

func TestNextStatus(t *testing.T) {
	legal := []struct {
		current OrderStatus
		op      Transition
		want    OrderStatus
	}{
		{OrderStatusPending, TransitionApprove, OrderStatusApproved},
		{OrderStatusApproved, TransitionFinalize, OrderStatusFinalized},
		{OrderStatusPending, TransitionCancel, OrderStatusCancelled},
		{OrderStatusApproved, TransitionCancel, OrderStatusCancelled},
		{OrderStatusCancelled, TransitionRestore, OrderStatusPending},
	}
	for _, tc := range legal {
		got, err := NextStatus(tc.current, tc.op)
		if err != nil {
			t.Errorf("%s from %s: unexpected error %v", tc.op, tc.current, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s from %s: expected %s, got %s", tc.op, tc.current, tc.want, got)
		}
	}

	illegal := []struct {
		current OrderStatus
		op      Transition
	}{
		{OrderStatusApproved, TransitionApprove},
		{OrderStatusFinalized, TransitionFinalize},
		{OrderStatusPending, TransitionFinalize},
		{OrderStatusFinalized, TransitionCancel},
		{OrderStatusCancelled, TransitionCancel},
		{OrderStatusPending, TransitionRestore},
		{OrderStatusFinalized, TransitionRestore},
	}
	for _, tc := range illegal {
		_, err := NextStatus(tc.current, tc.op)
		var terr *InvalidTransitionError
		if !errors.As(err, &terr) {
			t.Errorf("%s from %s: expected InvalidTransitionError, got %v", tc.op, tc.current, err)
			continue
		}
		if terr.Current != tc.current || terr.Operation != tc.op {
			t.Errorf("%s from %s: error carries %s/%s", tc.op, tc.current, terr.Operation, terr.Current)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":          OrderStatusPending,
		"approved":         OrderStatusApproved,
		"finalized":        OrderStatusFinalized,
		"cancelled":        OrderStatusCancelled,
		"":                 OrderStatusPending,
		"em_processamento": OrderStatusPending,
		"PENDING":          OrderStatusPending,
	}
	for raw, want := range cases {
		if got := NormalizeStatus(raw); got != want {
			t.Errorf("NormalizeStatus(%q) = %s, expected %s", raw, got, want)
		}
	}
}
