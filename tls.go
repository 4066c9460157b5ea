package main

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/firefart/go-version-text/internal/config"
)

// setupTLSConfig builds the listener tls config. Certificates are loaded by
// ServeTLS, this only adds the optional client certificate checks.
func setupTLSConfig(logger *slog.Logger, c config.TLS) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS13}

	if c.MTLSRootCA != "" {
		caCertPEM, err := os.ReadFile(c.MTLSRootCA)
		if err != nil {
			return nil, fmt.Errorf("could not read mtls root ca: %w", err)
		}
		roots := x509.NewCertPool()
		if ok := roots.AppendCertsFromPEM(caCertPEM); !ok {
			return nil, errors.New("failed to parse root certificate")
		}

		tlsConfig.ClientCAs = roots
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	if c.MTLSCertSubject != "" {
		tlsConfig.VerifyPeerCertificate = verifyLeafSubject(logger, c.MTLSCertSubject)
	}

	return tlsConfig, nil
}

// verifyLeafSubject only accepts chains whose leaf has the given subject
func verifyLeafSubject(logger *slog.Logger, subject string) func([][]byte, [][]*x509.Certificate) error {
	return func(_ [][]byte, verifiedChains [][]*x509.Certificate) error {
		var subjects []string
		// only verified chains, they already match the root ca
		for _, chain := range verifiedChains {
			if len(chain) == 0 {
				continue
			}
			for _, cert := range chain {
				logger.Debug("Got certificate", slog.String("subject", cert.Subject.String()), slog.String("serial", cert.SerialNumber.String()))
			}
			// the leaf is always first
			leafSubject := chain[0].Subject.String()
			if leafSubject == subject {
				logger.Debug("Allowing certificate", slog.String("subject", leafSubject))
				return nil
			}
			if !slices.Contains(subjects, leafSubject) {
				subjects = append(subjects, leafSubject)
			}
		}

		return fmt.Errorf("access denied, no valid certificate provided. Got the following subjects: %s", strings.Join(subjects, ", "))
	}
}
