package executor

import "errors"

var (
	// ErrUnauthorized is returned when the trigger is called by a non-owner.
	ErrUnauthorized = errors.New("caller is not the owner")

	// ErrApprovalFailed is returned when an allowance grant is rejected.
	ErrApprovalFailed = errors.New("approval failed")

	// ErrUnprofitable is returned when the round trip did not increase the
	// principal-asset balance.
	ErrUnprofitable = errors.New("route is unprofitable")

	// ErrThrottled is returned when the trigger exceeds its rate limit.
	ErrThrottled = errors.New("trigger rate limited")
)
