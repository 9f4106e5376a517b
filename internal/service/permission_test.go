package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/document-tracking/internal/domain"
)

func TestCanMove(t *testing.T) {
	areaA, areaB := int64(1), int64(2)
	emp1, emp2 := int64(10), int64(20)

	admin := &domain.User{Role: domain.RoleAdministrator}
	inA := &domain.User{Role: domain.RoleOperator, AreaID: &areaA, EmployeeID: &emp1}
	inAOther := &domain.User{Role: domain.RoleOperator, AreaID: &areaA, EmployeeID: &emp2}
	inANoEmployee := &domain.User{Role: domain.RoleOperator, AreaID: &areaA}
	inB := &domain.User{Role: domain.RoleOperator, AreaID: &areaB}

	free := &domain.Document{CurrentAreaID: areaA}
	held := &domain.Document{CurrentAreaID: areaA, CurrentEmployeeID: &emp1}

	tests := []struct {
		name   string
		user   *domain.User
		doc    *domain.Document
		reason string
	}{
		{name: "admin anywhere", user: admin, doc: held},
		{name: "same area unassigned", user: inANoEmployee, doc: free},
		{name: "holder", user: inA, doc: held},
		{name: "other area", user: inB, doc: free, reason: ReasonNotInArea},
		{name: "assigned elsewhere", user: inAOther, doc: held, reason: ReasonAssignedElsewhere},
		{name: "no employee on assigned doc", user: inANoEmployee, doc: held, reason: ReasonAssignedElsewhere},
		{name: "missing user", user: nil, doc: free, reason: ReasonNotFound},
		{name: "missing document", user: admin, doc: nil, reason: ReasonNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CanMove(tc.user, tc.doc)
			assert.Equal(t, tc.reason == "", got.Allowed)
			assert.Equal(t, tc.reason, got.Reason)
		})
	}
}

func TestCanDelete(t *testing.T) {
	admin := &domain.User{Role: domain.RoleAdministrator}
	operator := &domain.User{Role: domain.RoleOperator}
	doc := &domain.Document{}

	assert.True(t, CanDelete(admin, doc, 1).Allowed)
	assert.Equal(t, ReasonHasHistory, CanDelete(admin, doc, 2).Reason)
	assert.Equal(t, ReasonAdminOnly, CanDelete(operator, doc, 1).Reason)
	assert.Equal(t, ReasonAdminOnly, CanDelete(operator, doc, 5).Reason)
	assert.Equal(t, ReasonNotFound, CanDelete(nil, doc, 1).Reason)
}

func TestPermissionValidator_ReadsStoredState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t)
	validator := NewPermissionValidator(f.store.Users(), f.store.Documents(), f.store.Tracking())

	res, err := validator.ValidateDocumentMovement(ctx, f.opA1.ID, doc.ID)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = validator.ValidateDocumentMovement(ctx, f.opB.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotInArea, res.Reason)

	res, err = validator.ValidateDocumentMovement(ctx, f.opA1.ID, 999)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, ReasonNotFound, res.Reason)

	res, err = validator.ValidateDocumentDeletion(ctx, doc.ID, f.admin.ID)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	_, err = f.svc.MoveDocument(ctx, MoveInput{DocumentID: doc.ID, ToAreaID: f.areaB.ID}, f.admin.ID)
	require.NoError(t, err)
	res, err = validator.ValidateDocumentDeletion(ctx, doc.ID, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonHasHistory, res.Reason)

	// validation never writes
	assert.Len(t, f.ledger(t, doc.ID), 2)
	res, err = validator.ValidateDocumentDeletion(ctx, doc.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)
}
