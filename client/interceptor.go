package client

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// HttpInterceptor sits under the JSON-RPC client and, when enabled, traces every
// request and response body.
type HttpInterceptor struct {
	core    http.RoundTripper
	enabled bool
}

func NewHttpInterceptor() *HttpInterceptor {
	return &HttpInterceptor{
		core:    http.DefaultTransport,
		enabled: logrus.IsLevelEnabled(logrus.TraceLevel),
	}
}

func (i *HttpInterceptor) Enable() {
	i.enabled = true
}
func (i *HttpInterceptor) Disable() {
	i.enabled = false
}

func (i *HttpInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if !i.enabled {
		return i.core.RoundTrip(req)
	}
	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	res, err := i.core.RoundTrip(req)
	if err != nil {
		logrus.WithError(err).WithField("request", string(reqBody)).Trace("rpc")
		return nil, err
	}
	resBody, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	res.Body = io.NopCloser(bytes.NewReader(resBody))

	logrus.WithFields(logrus.Fields{
		"url":      req.URL.String(),
		"status":   res.StatusCode,
		"request":  string(reqBody),
		"response": string(resBody),
	}).Trace("rpc")
	return res, nil
}
