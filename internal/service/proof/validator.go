// Package proof decides whether a submitted delivery proof satisfies an
// order's required proof policy. Photo and signature proofs are accepted on
// presence of a payload reference; OTP proofs must match the code issued
// for the order exactly. Content inspection is out of scope.
package proof

import (
	"crypto/subtle"
	"strings"

	"github.com/Heinvv10/gaztime-sub000/internal/apperr"
	"github.com/Heinvv10/gaztime-sub000/internal/domain"
)

// OTPLength is the length of issued delivery codes.
const OTPLength = 6

// Validate checks a proof against the OTP issued for the order. A failure
// leaves the order unchanged; callers must not commit partial state.
func Validate(issuedOTP string, p *domain.DeliveryProof) error {
	if p == nil || strings.TrimSpace(p.Payload) == "" {
		return apperr.ErrProofMissing
	}

	switch p.Type {
	case domain.ProofPhoto, domain.ProofSignature:
		return nil
	case domain.ProofOTP:
		return validateOTP(issuedOTP, p.Payload)
	default:
		return apperr.ErrInvalid
	}
}

func validateOTP(issued, submitted string) error {
	if issued == "" {
		// no code was ever issued for this order
		return apperr.ErrProofMismatch
	}
	if len(submitted) != OTPLength {
		return apperr.ErrProofMismatch
	}
	if subtle.ConstantTimeCompare([]byte(issued), []byte(submitted)) != 1 {
		return apperr.ErrProofMismatch
	}
	return nil
}
