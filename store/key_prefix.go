package store

// Declare database key prefix for objects
const (
	PrefixCreditsBySlot    = "credits:"
	PrefixLedgerHashBySlot = "ledger_hash:"

	CreditsKeyLatestSlot = "credits_latest_slot"
)
