package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

func TestSpareRequest_TransicionesLegales(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.RequestPending, entity.RequestApproved, true},
		{entity.RequestPending, entity.RequestRejected, true},
		{entity.RequestPending, entity.RequestForwarded, true},
		{entity.RequestApproved, entity.RequestAllocated, true},
		{entity.RequestAllocated, entity.RequestCompleted, true},
		// nunca hacia atrás ni saltos
		{entity.RequestApproved, entity.RequestPending, false},
		{entity.RequestPending, entity.RequestAllocated, false},
		{entity.RequestPending, entity.RequestCompleted, false},
		{entity.RequestRejected, entity.RequestApproved, false},
		{entity.RequestCompleted, entity.RequestPending, false},
		{entity.RequestForwarded, entity.RequestApproved, false},
	}
	for _, tc := range cases {
		req := &entity.SpareRequest{Status: tc.from}
		assert.Equal(t, tc.ok, req.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSpareRequest_DecidableSoloEnPending(t *testing.T) {
	for _, status := range []string{
		entity.RequestApproved, entity.RequestRejected, entity.RequestForwarded,
		entity.RequestAllocated, entity.RequestCompleted,
	} {
		req := &entity.SpareRequest{Status: status}
		assert.False(t, req.Decidable(), "status %s no debe ser decidible", status)
	}
	assert.True(t, (&entity.SpareRequest{Status: entity.RequestPending}).Decidable())
}

func TestSpareRequest_Terminales(t *testing.T) {
	assert.True(t, (&entity.SpareRequest{Status: entity.RequestRejected}).Terminal())
	assert.True(t, (&entity.SpareRequest{Status: entity.RequestCompleted}).Terminal())
	assert.False(t, (&entity.SpareRequest{Status: entity.RequestForwarded}).Terminal())
}

func TestReturnRequest_Transiciones(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.ReturnPending, entity.ReturnReceived, true},
		{entity.ReturnPending, entity.ReturnRejected, true},
		{entity.ReturnReceived, entity.ReturnVerified, true},
		{entity.ReturnReceived, entity.ReturnRejected, true},
		{entity.ReturnVerified, entity.ReturnCompleted, true},
		{entity.ReturnPending, entity.ReturnVerified, false},
		{entity.ReturnVerified, entity.ReturnRejected, false},
		{entity.ReturnCompleted, entity.ReturnPending, false},
		{entity.ReturnRejected, entity.ReturnReceived, false},
	}
	for _, tc := range cases {
		ret := &entity.ReturnRequest{Status: tc.from}
		assert.Equal(t, tc.ok, ret.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
