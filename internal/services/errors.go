package services

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrAuctionClosed        = errors.New("auction is closed")
	ErrBidTooLow            = errors.New("bid below minimum increment")
	ErrNoActiveBids         = errors.New("no active bids to remove")
	ErrDuplicateAuction     = errors.New("auction already posted for this message")
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrSubmissionNotPending = errors.New("submission already processed")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingField         = errors.New("missing required field")
	ErrNotVerified          = errors.New("user is not verified")
	ErrAlreadyVerified      = errors.New("user is already verified")
	ErrRequestPending       = errors.New("verification request already pending")
	ErrNoDraft              = errors.New("no submission in progress")
	ErrNoBidSession         = errors.New("no bid in progress")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
