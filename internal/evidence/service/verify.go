package service

import (
	"encoding/json"
	"strings"

	"dossier/internal/evidence/canonical"
	"dossier/internal/evidence/models"
	dErrors "dossier/pkg/domain-errors"
)

// hashPack digests the whole pack with integrity.pack_hash excluded. The
// exclusion happens on the decoded form so the stored hash value, whatever a
// caller set it to, never influences the digest.
func hashPack(pack *models.EvidencePack) (string, error) {
	raw, err := json.Marshal(pack)
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeSerialization, "encode pack for hashing", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", dErrors.Wrap(dErrors.CodeSerialization, "decode pack for hashing", err)
	}
	if integrity, ok := body["integrity"].(map[string]any); ok {
		delete(integrity, "pack_hash")
	}
	return canonical.HashValue(body)
}

// VerifyResult reports which of a pack's integrity claims held up.
type VerifyResult struct {
	Valid bool `json:"valid"`
	// BadEntries holds zero-based timeline indexes whose stored entry hash
	// does not match the recomputed one.
	BadEntries []int  `json:"bad_entries,omitempty"`
	ChainOK    bool   `json:"chain_ok"`
	PackHashOK bool   `json:"pack_hash_ok"`
	WantPack   string `json:"computed_pack_hash"`
	WantChain  string `json:"computed_chain"`
}

// Verify recomputes every hash in a submitted pack and compares against the
// stored values. It needs no database access: a pack carries everything its
// own verification requires.
func Verify(pack *models.EvidencePack) (VerifyResult, error) {
	result := VerifyResult{ChainOK: true, PackHashOK: true}

	var concat strings.Builder
	for i, entry := range pack.Timeline {
		want, err := entryHash(entry)
		if err != nil {
			return VerifyResult{}, err
		}
		if want != entry.EntryHash {
			result.BadEntries = append(result.BadEntries, i)
		}
		concat.WriteString(entry.EntryHash)
	}

	result.WantChain = canonical.Digest(concat.String())
	result.ChainOK = result.WantChain == pack.Integrity.TimelineHashChain

	wantPack, err := hashPack(pack)
	if err != nil {
		return VerifyResult{}, err
	}
	result.WantPack = wantPack
	result.PackHashOK = wantPack == pack.Integrity.PackHash

	result.Valid = len(result.BadEntries) == 0 && result.ChainOK && result.PackHashOK
	return result, nil
}
