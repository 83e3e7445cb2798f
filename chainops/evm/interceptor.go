package evm

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// traceTransport mirrors JSON-RPC traffic to the log at trace level. It is
// installed only when trace logging is enabled, so the read and re-wrap of
// bodies costs nothing in normal operation.
type traceTransport struct {
	core http.RoundTripper
}

var _ http.RoundTripper = &traceTransport{}

func newTraceTransport() *traceTransport {
	return &traceTransport{core: http.DefaultTransport}
}

func (t *traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}
	res, err := t.core.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resBody, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	res.Body = io.NopCloser(bytes.NewReader(resBody))
	logrus.WithFields(logrus.Fields{
		"url":      req.URL.String(),
		"request":  string(reqBody),
		"response": string(resBody),
	}).Trace("rpc round trip")
	return res, nil
}
