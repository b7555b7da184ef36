package domain

const (
	RoleCustomer = "CUSTOMER"
	RoleMechanic = "MECHANIC"
	RoleAdmin    = "ADMIN"
)

const (
	AppointmentPending   = "PENDING"
	AppointmentConfirmed = "CONFIRMED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

// Loyalty transaction types. Kept lowercase for compatibility with the
// customer apps that already read the ledger.
const (
	LoyaltyTxAppointmentCompleted = "appointment_completed"
	LoyaltyTxManualAdjustment     = "manual_adjustment"
	LoyaltyTxRewardRedemption     = "reward_redemption"
	LoyaltyTxBonus                = "bonus"
)

const (
	VehicleAvailable = "AVAILABLE"
	VehicleReserved  = "RESERVED"
	VehicleSold      = "SOLD"
)

const (
	QuoteDraft    = "DRAFT"
	QuoteSent     = "SENT"
	QuoteAccepted = "ACCEPTED"
	QuoteRejected = "REJECTED"
	QuoteExpired  = "EXPIRED"
)

const (
	InvoiceDraft  = "DRAFT"
	InvoiceIssued = "ISSUED"
	InvoicePaid   = "PAID"
	InvoiceVoid   = "VOID"
)

// Document number prefixes (devis / facture).
const (
	QuoteNumberPrefix   = "DEV"
	InvoiceNumberPrefix = "FAC"
)

// Revenue report periods. Fiscal is calendar-year aligned for this garage.
const (
	PeriodMonthly = "monthly"
	PeriodAnnual  = "annual"
	PeriodFiscal  = "fiscal"
)
