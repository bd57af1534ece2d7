package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means a series is empty or has no usable close at the evaluation point.
	ErrInsufficientData = errors.New("insufficient price data")
	// ErrSymbolNotFound means the provider returned nothing for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrInvalidBudget means the budget is not a positive finite number.
	ErrInvalidBudget = errors.New("budget must be a positive finite number")
	// ErrNoSymbols means the symbol list was empty after parsing.
	ErrNoSymbols = errors.New("at least one stock symbol is required")
)

// FetchFailureError reports that the bulk price fetch failed as a whole.
type FetchFailureError struct {
	Err error
}

func (e *FetchFailureError) Error() string {
	return fmt.Sprintf("fetch price data: %v", e.Err)
}

func (e *FetchFailureError) Unwrap() error { return e.Err }

// WarningKind classifies a skipped symbol.
type WarningKind string

const (
	WarnInsufficientData WarningKind = "insufficient_data"
	WarnSymbolNotFound   WarningKind = "symbol_not_found"
)

// Warning is a per-symbol problem surfaced to the caller without aborting the run.
type Warning struct {
	Symbol  string      `json:"symbol"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// WarningFor builds a warning, classifying err by its sentinel.
func WarningFor(symbol string, err error) Warning {
	kind := WarnInsufficientData
	if errors.Is(err, ErrSymbolNotFound) {
		kind = WarnSymbolNotFound
	}
	return Warning{Symbol: symbol, Kind: kind, Message: fmt.Sprintf("%s: %v", symbol, err)}
}
