package http

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// getCertificateChain returns the system pool extended with every .crt (DER)
// and .pem file found below certPath.
func getCertificateChain(certPath string) (*x509.CertPool, error) {
	rootCAs, err := x509.SystemCertPool()
	if rootCAs == nil || err != nil {
		rootCAs = x509.NewCertPool()
	}

	if err := filepath.WalkDir(certPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		return appendCertificate(rootCAs, path)
	}); err != nil {
		return nil, fmt.Errorf("error walking the path %s: %w", certPath, err)
	}

	return rootCAs, nil
}

func appendCertificate(pool *x509.CertPool, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".crt" && ext != ".pem" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read cert file %s: %w", filepath.Base(path), err)
	}

	if ext == ".crt" {
		cert, err := x509.ParseCertificate(content)
		if err != nil {
			return fmt.Errorf("failed to parse crt file %s: %w", filepath.Base(path), err)
		}
		content = pem.EncodeToMemory(&pem.Block{
			Type:  "CERTIFICATE",
			Bytes: cert.Raw,
		})
	}

	if ok := pool.AppendCertsFromPEM(content); !ok {
		return fmt.Errorf("failed to append cert from %s", filepath.Base(path))
	}
	return nil
}
