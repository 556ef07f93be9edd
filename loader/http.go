package loader

import (
	"errors"
	"fmt"
	"mime"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ErrRemoteDisabled is returned for URL resources when remote loading is off.
var ErrRemoteDisabled = errors.New("remote resources are disabled")

// HTTP fetches resources with GET requests.
type HTTP struct {
	log       *zap.Logger
	client    *fasthttp.Client
	timeout   time.Duration
	userAgent string
	charset   string
}

// NewHTTP creates remote loader. Zero timeout means no limit. Responses which
// do not declare charset are decoded from charsetLabel.
func NewHTTP(log *zap.Logger, timeout time.Duration, userAgent, charsetLabel string) *HTTP {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTP{
		log:       log.Named("http"),
		client:    &fasthttp.Client{},
		timeout:   timeout,
		userAgent: userAgent,
		charset:   charsetLabel,
	}
}

func (l *HTTP) Load(url string) (string, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if l.userAgent != "" {
		req.Header.SetUserAgent(l.userAgent)
	}

	start := time.Now()
	var err error
	if l.timeout > 0 {
		err = l.client.DoTimeout(req, resp, l.timeout)
	} else {
		err = l.client.Do(req, resp)
	}
	if err != nil {
		return "", fmt.Errorf("unable to fetch %s: %w", url, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return "", fmt.Errorf("unable to fetch %s: unexpected status %d", url, code)
	}

	label := l.charset
	if _, params, err := mime.ParseMediaType(string(resp.Header.ContentType())); err == nil && params["charset"] != "" {
		label = params["charset"]
	}
	text, err := decode(resp.Body(), label)
	if err != nil {
		return "", fmt.Errorf("%s: %w", url, err)
	}
	l.log.Debug("Fetched resource", zap.String("url", url), zap.Int("bytes", len(resp.Body())),
		zap.String("charset", label), zap.Duration("elapsed", time.Since(start)))
	return text, nil
}
