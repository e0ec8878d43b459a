package domain

import "time"

type ResultKind string

const (
	KindSuccess       ResultKind = "success"
	KindClosed        ResultKind = "closed"
	KindRepeated      ResultKind = "repeated"
	KindInvalidToken  ResultKind = "invalid_token"
	KindInternalError ResultKind = "internal_error"
)

// ExecutionResult is the single terminal outcome of a purchase attempt.
// Record is set only on KindSuccess. Detail is a sanitized description set
// only on KindInternalError; raw storage errors never travel in it.
type ExecutionResult struct {
	Kind   ResultKind
	Record *PurchaseRecord
	Detail string
}

// ExposureResult is the outcome of asking for an access token.
// When the sale is closed, Now/Start/End let the caller tell "not yet"
// from "already ended" without a second query.
type ExposureResult struct {
	Open     bool
	Token    string
	NotFound bool
	Now      time.Time
	Start    time.Time
	End      time.Time
}
