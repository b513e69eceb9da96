// Package auth loads the SSH host key, the public-key whitelist gating
// admission, and the operator fingerprint list elevating privilege.
// Grounded on the teacher's auth package, generalized per spec.md §6/§9:
// the whitelist gates admission, the operator file's fingerprints elevate
// privilege at join time, and an empty operator set is a valid (not
// fatal) configuration — nobody is an operator.
package auth

import (
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// SSHAuth holds the host signing key and the fingerprint sets loaded from
// the whitelist and operator files.
type SSHAuth struct {
	HostSSHPrivateKey ssh.Signer
	whitelist         map[string]string // fingerprint -> comment
	operators         map[string]bool   // fingerprint -> is operator
}

// Load reads the host private key and the whitelist from disk, both of
// which are required; operatorsPath may be empty, meaning no operators.
func Load(hostKeyPath, whitelistPath, operatorsPath string) (*SSHAuth, error) {
	pk, err := loadHostSSHPrivateKey(hostKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load host key: %w", err)
	}

	whitelist, err := loadAuthorizedKeys(whitelistPath)
	if err != nil {
		return nil, fmt.Errorf("load whitelist: %w", err)
	}

	operators := map[string]bool{}
	if operatorsPath != "" {
		ops, err := loadAuthorizedKeys(operatorsPath)
		if err != nil {
			return nil, fmt.Errorf("load operators: %w", err)
		}
		for fp := range ops {
			operators[fp] = true
		}
	}

	return &SSHAuth{HostSSHPrivateKey: pk, whitelist: whitelist, operators: operators}, nil
}

func loadHostSSHPrivateKey(path string) (ssh.Signer, error) {
	pkBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(pkBytes)
}

// loadAuthorizedKeys parses an OpenSSH authorized_keys-format file,
// returning a set keyed by SHA256 fingerprint. Lines that do not parse as a
// key are skipped by ssh.ParseAuthorizedKey; the scan ends once no further
// key is found. A missing file is an error, an empty one is a valid empty
// set.
func loadAuthorizedKeys(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	out := map[string]string{}
	rest := raw
	for len(rest) > 0 {
		pubKey, comment, _, tail, err := ssh.ParseAuthorizedKey(rest)
		if err != nil {
			break
		}
		out[ssh.FingerprintSHA256(pubKey)] = comment
		rest = tail
	}
	return out, nil
}

// HandlePublicKeyLogin is the ssh.ServerConfig.PublicKeyCallback: accept
// if the key's fingerprint is whitelisted, reject with no further auth
// methods otherwise (spec.md §4.7, §6).
func (a *SSHAuth) HandlePublicKeyLogin(c ssh.ConnMetadata, pubKey ssh.PublicKey) (*ssh.Permissions, error) {
	fp := ssh.FingerprintSHA256(pubKey)
	if _, ok := a.whitelist[fp]; ok {
		return &ssh.Permissions{
			Extensions: map[string]string{"pubkey-fp": fp},
		}, nil
	}
	return nil, fmt.Errorf("unknown public key for %q", c.User())
}

// IsOperator reports whether fingerprint is in the operator set.
func (a *SSHAuth) IsOperator(fingerprint string) bool {
	return a.operators[fingerprint]
}
