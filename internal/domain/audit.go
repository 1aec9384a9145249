package domain

// AuditAction names a mutating operation for the audit collaborator.
type AuditAction string

const (
	// Account actions
	AuditActionAccountCreate     AuditAction = "account.created"
	AuditActionAccountDeactivate AuditAction = "account.deactivated"

	// Movement actions
	AuditActionMovementCreate  AuditAction = "movement.created"
	AuditActionMovementConfirm AuditAction = "movement.confirmed"
	AuditActionMovementVoid    AuditAction = "movement.voided"

	// Transfer actions
	AuditActionTransferCreate AuditAction = "transfer.created"

	// Card actions
	AuditActionCardCreate  AuditAction = "card.created"
	AuditActionCardDelete  AuditAction = "card.deleted"
	AuditActionCardTopUp   AuditAction = "card.topup_created"
	AuditActionCardExpense AuditAction = "card.expense_created"

	// Rendicion actions
	AuditActionReconciliationCreate  AuditAction = "rendicion.created"
	AuditActionReconciliationClose   AuditAction = "rendicion.closed"
	AuditActionReconciliationApprove AuditAction = "rendicion.approved"
	AuditActionReconciliationReject  AuditAction = "rendicion.rejected"
)
