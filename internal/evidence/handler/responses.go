package handler

import (
	"dossier/internal/evidence/models"
	"dossier/internal/evidence/service"
)

// AccessResponse reports the gate decision for a listing without building
// the pack.
type AccessResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// VerifyRequest carries a previously issued pack for re-verification.
type VerifyRequest struct {
	Pack *models.EvidencePack `json:"pack"`
}

// VerifyResponse reports the recomputed integrity checks. IsLatest is only
// present when a receipt store is wired and holds a receipt for the listing.
type VerifyResponse struct {
	Result   service.VerifyResult `json:"result"`
	IsLatest *bool                `json:"is_latest,omitempty"`
}
