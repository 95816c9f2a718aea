package domain

import "fmt"

var (
	// Authorization
	ErrorUnauthorized               = fmt.Errorf("unauthorized")
	ErrorInvalidMemberDelegateOwner = fmt.Errorf("invalid member delegate owner")
	ErrorInvalidTokenAuthority      = fmt.Errorf("invalid token authority")
	ErrorInvalidVaultAuthority      = fmt.Errorf("invalid vault authority")

	// Staking rules
	ErrorStaleStakeNeedsWithdrawal      = fmt.Errorf("stale stake needs withdrawal")
	ErrorEntityNotActivated             = fmt.Errorf("entity not activated")
	ErrorInsufficientStakeIntentBalance = fmt.Errorf("insufficient stake intent balance")
	ErrorInsufficientStakeBalance       = fmt.Errorf("insufficient stake balance")
	ErrorDelegateBookNotEmpty           = fmt.Errorf("delegate book is not empty")
	ErrorInvalidCapabilityId            = fmt.Errorf("invalid capability id")

	// Withdrawals
	ErrorWithdrawalTimelockNotPassed = fmt.Errorf("withdrawal timelock not passed")
	ErrorPendingWithdrawalBurned     = fmt.Errorf("pending withdrawal already burned")
	ErrorDelegateAccountsNotProvided = fmt.Errorf("delegate accounts not provided")

	// Record lifecycle
	ErrorAlreadyInitialized     = fmt.Errorf("already initialized")
	ErrorNotInitialized         = fmt.Errorf("not initialized")
	ErrorInvalidAccountOwner    = fmt.Errorf("invalid account owner")
	ErrorRecordNotFound         = fmt.Errorf("record not found")
	ErrorConcurrentModification = fmt.Errorf("record changed by a concurrent operation")
	ErrorInvalidRequest         = fmt.Errorf("invalid request")

	// Arithmetic
	ErrorCheckedFailure = fmt.Errorf("checked arithmetic failure")

	// Token and pool collaborators
	ErrorInsufficientFunds = fmt.Errorf("insufficient funds")
	ErrorMintMismatch      = fmt.Errorf("mint mismatch")
	ErrorInvalidPool       = fmt.Errorf("invalid pool")
	ErrorInvalidBasket     = fmt.Errorf("invalid basket")
)
