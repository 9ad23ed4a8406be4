package services

import "fmt"

// ValidationError menandai input yang salah bentuk (amount <= 0, pasangan
// category/channel ilegal, enum tak dikenal). Tidak pernah di-retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InvalidTransition menandai perpindahan state yang tidak legal.
type InvalidTransition struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s", e.Entity, e.From, e.To)
}

// UnknownReference menandai notifikasi untuk order/reference yang tidak
// dikenali. Di webhook: dilog, di-ack, lalu dibuang (tidak di-retry).
type UnknownReference struct {
	Reference string
}

func (e *UnknownReference) Error() string {
	return fmt.Sprintf("unknown reference %q", e.Reference)
}

// ConcurrencyConflict berarti kalah race saat update balance; Recorder
// me-retry dengan batas, baru error ini keluar kalau batasnya habis.
type ConcurrencyConflict struct {
	AccountID uint
	Attempts  int
}

func (e *ConcurrencyConflict) Error() string {
	return fmt.Sprintf("account %d: balance update lost the race after %d attempts", e.AccountID, e.Attempts)
}
