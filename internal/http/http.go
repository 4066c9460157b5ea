package http

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"

	"github.com/firefart/go-version-text/internal/config"
)

// Client is the outbound client used to fetch remote version artifacts.
type Client struct {
	userAgent string
	client    *http.Client
	debug     bool
	logger    *slog.Logger
}

func NewHTTPClient(configuration config.Configuration, logger *slog.Logger, debugMode bool) (*Client, error) {
	// clone the default transport so proxy settings from the environment are respected
	defaultTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errors.New("failed to cast default transport to http.Transport")
	}
	tr := defaultTransport.Clone()

	// add additional certs
	if configuration.HTTP.CertDir != "" {
		rootCAs, err := getCertificateChain(configuration.HTTP.CertDir)
		if err != nil {
			return nil, fmt.Errorf("could not get root cas: %w", err)
		}
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		tr.TLSClientConfig.RootCAs = rootCAs
	}

	httpClient := http.Client{
		Timeout:   configuration.Timeout,
		Transport: tr,
	}
	return &Client{
		userAgent: configuration.HTTP.UserAgent,
		client:    &httpClient,
		debug:     debugMode,
		logger:    logger,
	}, nil
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.debug {
		reqDump, err := httputil.DumpRequestOut(req, true)
		if err != nil {
			c.logger.Error("error on DumpRequestOut", slog.String("err", err.Error()))
		} else {
			c.logger.Debug("sending http request", slog.String("req", string(reqDump)))
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if c.debug {
		respDump, err := httputil.DumpResponse(resp, true)
		if err != nil {
			c.logger.Error("error on DumpResponse", slog.String("err", err.Error()))
		} else {
			c.logger.Debug("got http response", slog.String("resp", string(respDump)))
		}
	}

	return resp, nil
}
