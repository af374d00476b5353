package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"aigov/internal/errors"
	"aigov/internal/signing"
)

// VerifyResult reports the outcome of an evidence package verification.
type VerifyResult struct {
	Manifest Manifest

	// Mismatched lists artifact names whose on-disk digest differs from the
	// manifest. Empty on success.
	Mismatched []string

	// OutputsHashOK reports whether the recomputed outputs hash matches the
	// manifest's recorded value.
	OutputsHashOK bool

	// SignatureChecked is true when a passphrase was supplied and a signature
	// file was present.
	SignatureChecked bool
}

// OK reports whether every check passed.
func (r VerifyResult) OK() bool {
	return len(r.Mismatched) == 0 && r.OutputsHashOK
}

// Verify re-hashes a run directory's artifacts against its manifest and
// recomputes the outputs hash. When passphrase is non-empty the detached
// signature is also checked; a signed package missing its signature file is
// an error in that case.
func Verify(runDir, passphrase string) (VerifyResult, error) {
	manifestBytes, err := os.ReadFile(filepath.Join(runDir, ArtifactManifest))
	if err != nil {
		return VerifyResult{}, errors.Wrap(errors.EvidenceIO, "read manifest", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return VerifyResult{}, errors.Wrap(errors.EvidenceIO, "parse manifest", err)
	}

	res := VerifyResult{Manifest: manifest}

	for _, a := range manifest.Artifacts {
		data, err := os.ReadFile(filepath.Join(runDir, a.Name))
		if err != nil {
			return VerifyResult{}, errors.Wrap(errors.EvidenceIO, fmt.Sprintf("read artifact %s", a.Name), err)
		}
		if Digest(data) != a.SHA256 {
			res.Mismatched = append(res.Mismatched, a.Name)
		}
	}
	res.OutputsHashOK = computeOutputsHash(manifest.Artifacts) == manifest.OutputsHash

	if passphrase != "" {
		sigBytes, err := os.ReadFile(filepath.Join(runDir, ArtifactSignature))
		if err != nil {
			return VerifyResult{}, errors.Wrap(errors.EvidenceIO, "read manifest signature", err)
		}
		var sigDoc signing.Signature
		if err := json.Unmarshal(sigBytes, &sigDoc); err != nil {
			return VerifyResult{}, errors.Wrap(errors.EvidenceIO, "parse manifest signature", err)
		}
		signer, err := signing.NewSigner(passphrase)
		if err != nil {
			return VerifyResult{}, err
		}
		if err := signer.Verify(manifestBytes, sigDoc); err != nil {
			return VerifyResult{}, err
		}
		res.SignatureChecked = true
	}

	return res, nil
}
