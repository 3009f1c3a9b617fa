package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrOwnerNotFound     = errors.New("owner not found")
	ErrInsufficientFunds = errors.New("account does not exist or without sufficient deposit")

	// Input errors
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidOwner  = errors.New("invalid owner information")
	ErrInvalidMoney  = errors.New("invalid monetary value")

	ErrInvalidAccountID = errors.New("invalid account id")
)

// Reasons reported to callers when a transfer is rejected.
const (
	ReasonDailyLimitExceeded  = "Daily transfer limit exceeds."
	ReasonSenderNotFound      = "Sender account does not exist."
	ReasonRecipientNotFound   = "Recipient account does not exist."
	ReasonNotApproved         = "Transfer not approved."
	ReasonInsufficientDeposit = "Sender account does not have sufficient deposit."
)

// RejectionKind separates rejections caused by account state from those
// decided by the approval gateway.
type RejectionKind string

const (
	RejectionBusiness RejectionKind = "business"
	RejectionApproval RejectionKind = "approval"
)

// Rejection is a recoverable, user-facing transfer outcome.
type Rejection struct {
	Kind   RejectionKind
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Transfer rejections
var (
	ErrDailyLimitExceeded  = &Rejection{Kind: RejectionBusiness, Reason: ReasonDailyLimitExceeded}
	ErrSenderNotFound      = &Rejection{Kind: RejectionBusiness, Reason: ReasonSenderNotFound}
	ErrRecipientNotFound   = &Rejection{Kind: RejectionBusiness, Reason: ReasonRecipientNotFound}
	ErrInsufficientDeposit = &Rejection{Kind: RejectionBusiness, Reason: ReasonInsufficientDeposit}
	ErrNotApproved         = &Rejection{Kind: RejectionApproval, Reason: ReasonNotApproved}
)

// AsRejection extracts a Rejection from err's chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}

	return nil, false
}
