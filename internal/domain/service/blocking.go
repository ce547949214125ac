package service

import "github.com/Nathan-Yinka/autochek-API/internal/domain/valueobject"

// HasBlockingLoans reports whether any application is still in flight
// (SUBMITTED, UNDER_REVIEW or PENDING_OFFER).
func HasBlockingLoans(statuses []valueobject.LoanApplicationStatus) bool {
	for _, s := range statuses {
		if s.IsBlocking() {
			return true
		}
	}
	return false
}

// HasBlockingOffers reports whether any offer is ISSUED or ACCEPTED.
func HasBlockingOffers(statuses []valueobject.OfferStatus) bool {
	for _, s := range statuses {
		if s.IsBlocking() {
			return true
		}
	}
	return false
}
